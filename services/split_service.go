package services

import (
	"math"

	"github.com/google/uuid"
)

// Split is the effective revenue division applied to one payment.
type Split struct {
	InstructorPct float64
	PlatformPct   float64
	AgreementID   *uuid.UUID
	Version       int
	Source        string // "agreement" or "default"
}

// SplitResult carries the exact minor-unit amounts for one payment. Invariant:
// InstructorAmount + PlatformAmount equals PaidAmount within one unit, and
// both amounts are non-negative.
type SplitResult struct {
	PaidAmount         int64 `json:"paid_amount"`
	InstructorAmount   int64 `json:"instructor_amount"`
	PlatformAmount     int64 `json:"platform_amount"`
	InstructorDiscount int64 `json:"instructor_discount"`
	PlatformDiscount   int64 `json:"platform_discount"`
}

// ComputeSplit divides paidAmount between instructor and platform. When a
// wallet discount applies, the split is computed on the pre-discount base and
// the discount is absorbed proportionally by both sides (allowsAbsorption) or
// by the platform alone. If the declared paid amount does not reconcile with
// base minus discount, the discount bookkeeping is ignored and the plain
// percentage rule applies to the actual paid amount — a safety net that keeps
// approvals flowing, not an error.
func ComputeSplit(paidAmount, baseAmount, walletDiscount int64, allowsAbsorption bool, split Split) SplitResult {
	if walletDiscount <= 0 || baseAmount <= 0 {
		return plainSplit(paidAmount, split.InstructorPct)
	}

	discount := walletDiscount
	if discount > baseAmount {
		discount = baseAmount
	}

	instructorOnBase := floorShare(baseAmount, split.InstructorPct)
	platformOnBase := baseAmount - instructorOnBase

	var instructorDiscount, platformDiscount int64
	if allowsAbsorption {
		instructorDiscount = floorShare(discount, split.InstructorPct)
		platformDiscount = discount - instructorDiscount
	} else {
		platformDiscount = discount
		if platformDiscount > platformOnBase {
			platformDiscount = platformOnBase
		}
	}

	if absDiff(baseAmount-instructorDiscount-platformDiscount, paidAmount) > 1 {
		return plainSplit(paidAmount, split.InstructorPct)
	}

	instructorAmount := instructorOnBase - instructorDiscount
	if instructorAmount < 0 {
		instructorAmount = 0
	}
	platformAmount := platformOnBase - platformDiscount
	if platformAmount < 0 {
		platformAmount = 0
	}

	if absDiff(instructorAmount+platformAmount, paidAmount) > 1 {
		return plainSplit(paidAmount, split.InstructorPct)
	}

	return SplitResult{
		PaidAmount:         paidAmount,
		InstructorAmount:   instructorAmount,
		PlatformAmount:     platformAmount,
		InstructorDiscount: instructorDiscount,
		PlatformDiscount:   platformDiscount,
	}
}

// plainSplit applies the percentage directly to the paid amount. The rounding
// remainder always lands on the platform side, so the sum is exact.
func plainSplit(paidAmount int64, instructorPct float64) SplitResult {
	if paidAmount < 0 {
		paidAmount = 0
	}
	instructorAmount := floorShare(paidAmount, instructorPct)
	return SplitResult{
		PaidAmount:       paidAmount,
		InstructorAmount: instructorAmount,
		PlatformAmount:   paidAmount - instructorAmount,
	}
}

func floorShare(amount int64, pct float64) int64 {
	return int64(math.Floor(float64(amount) * pct / 100.0))
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
