package record

import (
	"fmt"

	"github.com/mevdschee/qsbulk/packet"
)

// Kind identifies the type of a buffered record
type Kind int

const (
	KindSpeech Kind = iota
	KindItemDelete
	KindItemMove
	KindMerchantTransaction
	KindAARateHourly
	KindAAPurchase
	KindTradeskillEvent
	KindQGlobalUpdate
	KindLoot
	KindRawStatement

	// NumKinds is the number of record kinds
	NumKinds = int(KindRawStatement) + 1
)

var kindNames = [NumKinds]string{
	KindSpeech:              "speech",
	KindItemDelete:          "item_delete",
	KindItemMove:            "item_move",
	KindMerchantTransaction: "merchant_transaction",
	KindAARateHourly:        "aa_rate_hourly",
	KindAAPurchase:          "aa_purchase",
	KindTradeskillEvent:     "tradeskill_event",
	KindQGlobalUpdate:       "qglobal_update",
	KindLoot:                "loot",
	KindRawStatement:        "raw_statement",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < NumKinds
}

// Record is a single immutable event destined for one table row (or more)
type Record interface {
	Kind() Kind
}

// Money is a coin amount
type Money struct {
	Platinum int32
	Gold     int32
	Silver   int32
	Copper   int32
}

// Speech is a chat message relayed between players
type Speech struct {
	From      string
	To        string
	Message   string
	MinStatus int32
	GuildDBID int32
	Type      int32
}

// ItemDelete logs an item destroyed by a character
type ItemDelete struct {
	CharID    int32
	CharSlot  int32
	ItemID    int32
	Charges   int32
	StackSize int32
	CharCount int32
}

// MovedItem is one item inside an ItemMove record
type MovedItem struct {
	FromSlot int32
	ToSlot   int32
	ItemID   int32
	Charges  int32
}

// ItemMove logs items moved between inventory slots
type ItemMove struct {
	CharID     int32
	StackSize  int32
	CharCount  int32
	PostAction bool
	Items      []MovedItem
}

// MerchantTransaction logs a purchase or sale with a merchant
type MerchantTransaction struct {
	CharID        int32
	CharSlot      int32
	ItemID        int32
	Charges       int32
	ZoneID        int32
	MerchantID    int32
	MerchantMoney Money
	MerchantCount int32
	CharMoney     Money
	CharCount     int32
}

// AARateHourly accumulates AA points earned, bucketed per hour in SQL
type AARateHourly struct {
	CharID    int32
	AddPoints int32
}

// AAPurchase logs an alternate advancement purchase
type AAPurchase struct {
	CharID int32
	AAType string
	AAName string
	AAID   int32
	Cost   int32
	ZoneID int32
}

// TradeskillEvent logs a tradeskill combine
type TradeskillEvent struct {
	CharID     int32
	ZoneID     int32
	Results    string
	RecipeID   int32
	Tradeskill int32
	Trivial    int32
	Chance     float32
}

// QGlobalUpdate logs a quest global variable change
type QGlobalUpdate struct {
	CharID   int32
	Action   string
	ZoneID   int32
	VarName  string
	NewValue string
}

// Loot logs an item or coin looted from a corpse
type Loot struct {
	CharID     int32
	CorpseName string
	Type       string
	ZoneID     int32
	ItemID     int32
	ItemName   string
	Charges    int32
	Money      Money
}

// RawStatement is an already formatted SQL statement passed through unchanged
type RawStatement struct {
	SQL string
}

func (Speech) Kind() Kind              { return KindSpeech }
func (ItemDelete) Kind() Kind          { return KindItemDelete }
func (ItemMove) Kind() Kind            { return KindItemMove }
func (MerchantTransaction) Kind() Kind { return KindMerchantTransaction }
func (AARateHourly) Kind() Kind        { return KindAARateHourly }
func (AAPurchase) Kind() Kind          { return KindAAPurchase }
func (TradeskillEvent) Kind() Kind     { return KindTradeskillEvent }
func (QGlobalUpdate) Kind() Kind       { return KindQGlobalUpdate }
func (Loot) Kind() Kind                { return KindLoot }
func (RawStatement) Kind() Kind        { return KindRawStatement }

// DecodeRawStatement reads the length-prefixed statement text from a packet payload
func DecodeRawStatement(p *packet.ServerPacket) (RawStatement, error) {
	if p == nil {
		return RawStatement{}, packet.ErrShortPacket
	}
	sql, err := p.ReadLengthPrefixedString()
	if err != nil {
		return RawStatement{}, fmt.Errorf("decode raw statement (opcode 0x%04x): %w", p.Opcode, err)
	}
	return RawStatement{SQL: sql}, nil
}
