package encoder

import (
	"github.com/mevdschee/qsbulk/record"
)

// EncodeFunc turns one record into zero or more SQL value tuples.
// A nil or filtered record yields no tuples.
type EncodeFunc func(record.Record) []string

// Entry binds a record kind to its destination table and encoder
type Entry struct {
	Kind   record.Kind
	Table  string
	Encode EncodeFunc
}

// registry lists the bulk-inserted kinds in flush order
var registry = []Entry{
	{record.KindSpeech, "qs_player_speech", encodeSpeech},
	{record.KindItemDelete, "qs_player_item_delete_log", encodeItemDelete},
	{record.KindItemMove, "qs_player_item_move_log", encodeItemMove},
	{record.KindMerchantTransaction, "qs_merchant_transaction_log", encodeMerchantTransaction},
	{record.KindAARateHourly, "qs_player_aa_rate_hourly", encodeAARateHourly},
	{record.KindAAPurchase, "qs_player_aa_purchase_log", encodeAAPurchase},
	{record.KindTradeskillEvent, "qs_player_ts_event_log", encodeTradeskillEvent},
	{record.KindQGlobalUpdate, "qs_player_qglobal_updates_log", encodeQGlobalUpdate},
	{record.KindLoot, "qs_player_loot_records_log", encodeLoot},
}

var byKind = func() map[record.Kind]Entry {
	m := make(map[record.Kind]Entry, len(registry))
	for _, e := range registry {
		if _, dup := m[e.Kind]; dup {
			panic("encoder: duplicate registration for kind " + e.Kind.String())
		}
		m[e.Kind] = e
	}
	return m
}()

// Entries returns the bulk-inserted kinds in flush order.
// Pass-through statements are not part of the registry.
func Entries() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the registry entry for kind
func Lookup(kind record.Kind) (Entry, bool) {
	e, ok := byKind[kind]
	return e, ok
}

// Encode encodes rec with the encoder registered for its kind
func Encode(rec record.Record) []string {
	if rec == nil {
		return nil
	}
	e, ok := byKind[rec.Kind()]
	if !ok {
		return nil
	}
	return e.Encode(rec)
}

func one(s string) []string {
	return []string{s}
}

func encodeSpeech(rec record.Record) []string {
	r, ok := rec.(record.Speech)
	if !ok {
		return nil
	}
	return one(newTuple().
		text(r.From).
		text(r.To).
		text(r.Message).
		integer(r.MinStatus).
		integer(r.GuildDBID).
		integer(r.Type).
		finish())
}

func encodeItemDelete(rec record.Record) []string {
	r, ok := rec.(record.ItemDelete)
	if !ok || r.CharCount == 0 {
		return nil
	}
	return one(newTuple().
		integer(r.CharID).
		integer(r.CharSlot).
		integer(r.ItemID).
		integer(r.Charges).
		integer(r.StackSize).
		integer(r.CharCount).
		expr(sqlNow).
		finish())
}

// encodeItemMove emits one row per moved item
func encodeItemMove(rec record.Record) []string {
	r, ok := rec.(record.ItemMove)
	if !ok || r.CharCount == 0 || len(r.Items) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, newTuple().
			integer(r.CharID).
			integer(it.FromSlot).
			integer(it.ToSlot).
			integer(it.ItemID).
			integer(it.Charges).
			integer(r.StackSize).
			integer(r.CharCount).
			boolean(r.PostAction).
			finish())
	}
	return out
}

func encodeMerchantTransaction(rec record.Record) []string {
	r, ok := rec.(record.MerchantTransaction)
	if !ok || r.CharCount+r.MerchantCount == 0 {
		return nil
	}
	return one(newTuple().
		integer(r.CharID).
		integer(r.CharSlot).
		integer(r.ItemID).
		integer(r.Charges).
		integer(r.ZoneID).
		integer(r.MerchantID).
		integer(r.MerchantMoney.Platinum).
		integer(r.MerchantMoney.Gold).
		integer(r.MerchantMoney.Silver).
		integer(r.MerchantMoney.Copper).
		integer(r.MerchantCount).
		integer(r.CharMoney.Platinum).
		integer(r.CharMoney.Gold).
		integer(r.CharMoney.Silver).
		integer(r.CharMoney.Copper).
		integer(r.CharCount).
		expr(sqlNow).
		finish())
}

func encodeAARateHourly(rec record.Record) []string {
	r, ok := rec.(record.AARateHourly)
	if !ok || r.CharID == 0 {
		return nil
	}
	return one(newTuple().
		integer(r.CharID).
		integer(r.AddPoints).
		expr(sqlHourBucket).
		finish())
}

func encodeAAPurchase(rec record.Record) []string {
	r, ok := rec.(record.AAPurchase)
	if !ok || r.CharID == 0 {
		return nil
	}
	return one(newTuple().
		integer(r.CharID).
		text(r.AAType).
		text(r.AAName).
		integer(r.AAID).
		integer(r.Cost).
		integer(r.ZoneID).
		finish())
}

func encodeTradeskillEvent(rec record.Record) []string {
	r, ok := rec.(record.TradeskillEvent)
	if !ok || r.CharID == 0 || !finite(r.Chance) {
		return nil
	}
	return one(newTuple().
		integer(r.CharID).
		integer(r.ZoneID).
		text(r.Results).
		integer(r.RecipeID).
		integer(r.Tradeskill).
		integer(r.Trivial).
		decimal(r.Chance).
		finish())
}

func encodeQGlobalUpdate(rec record.Record) []string {
	r, ok := rec.(record.QGlobalUpdate)
	if !ok || r.CharID == 0 {
		return nil
	}
	return one(newTuple().
		integer(r.CharID).
		text(r.Action).
		integer(r.ZoneID).
		text(r.VarName).
		text(r.NewValue).
		finish())
}

func encodeLoot(rec record.Record) []string {
	r, ok := rec.(record.Loot)
	if !ok || r.CharID == 0 {
		return nil
	}
	return one(newTuple().
		integer(r.CharID).
		text(r.CorpseName).
		text(r.Type).
		integer(r.ZoneID).
		integer(r.ItemID).
		text(r.ItemName).
		integer(r.Charges).
		integer(r.Money.Platinum).
		integer(r.Money.Gold).
		integer(r.Money.Silver).
		integer(r.Money.Copper).
		finish())
}
