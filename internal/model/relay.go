// Package model defines domain records for relay payment auditing.
package model

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

type Network string

var (
	Mainnet Network = "mainnet"
	Holesky Network = "holesky"
	Sepolia Network = "sepolia"
)

// RelayBid is one row of relay bid data: the payment the builder promised
// off-chain for winning the slot's auction.
type RelayBid struct {
	Slot                 uint64
	ProposerFeeRecipient common.Address
	Value                *big.Int
	BlockNumber          uint64
}

// AuditResult is one persisted audit row for a slot. Rows are appended once
// and never rewritten; a slot present in the output set is considered done.
type AuditResult struct {
	Slot         uint64
	BlockNumber  uint64
	BidValue     *big.Int
	BalanceDiff  *big.Int
	PaymentType  PaymentType
	Withdrawals  uint64
	Transfers    uint64
	TransfersIn  uint64
	TransfersOut uint64
}

// BidCSVHeader is the expected header of the relay bid input file.
func BidCSVHeader() []string {
	return []string{"slot", "proposer_fee_recipient", "value", "block_number"}
}

// ParseRelayBid decodes one input file record.
func ParseRelayBid(record []string) (RelayBid, error) {
	if len(record) != 4 {
		return RelayBid{}, fmt.Errorf("expected 4 columns, got %d", len(record))
	}
	slot, err := strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return RelayBid{}, fmt.Errorf("parse slot %q: %w", record[0], err)
	}
	if !common.IsHexAddress(record[1]) {
		return RelayBid{}, fmt.Errorf("invalid fee recipient address %q", record[1])
	}
	value, ok := new(big.Int).SetString(record[2], 10)
	if !ok {
		return RelayBid{}, fmt.Errorf("invalid decimal bid value %q", record[2])
	}
	blockNumber, err := strconv.ParseUint(record[3], 10, 64)
	if err != nil {
		return RelayBid{}, fmt.Errorf("parse block number %q: %w", record[3], err)
	}
	return RelayBid{
		Slot:                 slot,
		ProposerFeeRecipient: common.HexToAddress(record[1]),
		Value:                value,
		BlockNumber:          blockNumber,
	}, nil
}

// AuditResultCSVHeader is the header of the audit output file.
func AuditResultCSVHeader() []string {
	return []string{
		"slot",
		"block_number",
		"bid_value",
		"balance_diff",
		"payment_type",
		"withdrawals",
		"transfers",
		"transfers_in",
		"transfers_out",
	}
}

// ToCSVRecord encodes the result as one output file record. Big integers are
// written as decimal strings.
func (r AuditResult) ToCSVRecord() []string {
	return []string{
		strconv.FormatUint(r.Slot, 10),
		strconv.FormatUint(r.BlockNumber, 10),
		bigString(r.BidValue),
		bigString(r.BalanceDiff),
		string(r.PaymentType),
		strconv.FormatUint(r.Withdrawals, 10),
		strconv.FormatUint(r.Transfers, 10),
		strconv.FormatUint(r.TransfersIn, 10),
		strconv.FormatUint(r.TransfersOut, 10),
	}
}

// ParseAuditResult decodes one output file record.
func ParseAuditResult(record []string) (AuditResult, error) {
	if len(record) != 9 {
		return AuditResult{}, fmt.Errorf("expected 9 columns, got %d", len(record))
	}
	var res AuditResult
	var err error
	if res.Slot, err = strconv.ParseUint(record[0], 10, 64); err != nil {
		return AuditResult{}, fmt.Errorf("parse slot %q: %w", record[0], err)
	}
	if res.BlockNumber, err = strconv.ParseUint(record[1], 10, 64); err != nil {
		return AuditResult{}, fmt.Errorf("parse block number %q: %w", record[1], err)
	}
	var ok bool
	if res.BidValue, ok = new(big.Int).SetString(record[2], 10); !ok {
		return AuditResult{}, fmt.Errorf("invalid decimal bid value %q", record[2])
	}
	if res.BalanceDiff, ok = new(big.Int).SetString(record[3], 10); !ok {
		return AuditResult{}, fmt.Errorf("invalid decimal balance diff %q", record[3])
	}
	res.PaymentType, err = ParsePaymentType(record[4])
	if err != nil {
		return AuditResult{}, err
	}
	if res.Withdrawals, err = strconv.ParseUint(record[5], 10, 64); err != nil {
		return AuditResult{}, fmt.Errorf("parse withdrawals %q: %w", record[5], err)
	}
	if res.Transfers, err = strconv.ParseUint(record[6], 10, 64); err != nil {
		return AuditResult{}, fmt.Errorf("parse transfers %q: %w", record[6], err)
	}
	if res.TransfersIn, err = strconv.ParseUint(record[7], 10, 64); err != nil {
		return AuditResult{}, fmt.Errorf("parse transfers_in %q: %w", record[7], err)
	}
	if res.TransfersOut, err = strconv.ParseUint(record[8], 10, 64); err != nil {
		return AuditResult{}, fmt.Errorf("parse transfers_out %q: %w", record[8], err)
	}
	return res, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
