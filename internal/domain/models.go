package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountBuyer    AccountKind = "BUYER"
	AccountMerchant AccountKind = "MERCHANT"
)

func (k AccountKind) Valid() bool {
	return k == AccountBuyer || k == AccountMerchant
}

// Field names a balance column of an account.
type Field string

const (
	FieldBalance       Field = "balance"
	FieldFrozenBalance Field = "frozen_balance"
	FieldSilver        Field = "silver"
)

func (f Field) Valid() bool {
	switch f {
	case FieldBalance, FieldFrozenBalance, FieldSilver:
		return true
	}
	return false
}

// AccountRef identifies an account by owner kind and owner id.
type AccountRef struct {
	Kind AccountKind `json:"kind"`
	ID   int64       `json:"id"`
}

func Buyer(id int64) AccountRef    { return AccountRef{Kind: AccountBuyer, ID: id} }
func Merchant(id int64) AccountRef { return AccountRef{Kind: AccountMerchant, ID: id} }

type Account struct {
	Kind          AccountKind     `db:"owner_kind"`
	ID            int64           `db:"owner_id"`
	Balance       decimal.Decimal `db:"balance"`
	FrozenBalance decimal.Decimal `db:"frozen_balance"`
	Silver        decimal.Decimal `db:"silver"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (a Account) Ref() AccountRef {
	return AccountRef{Kind: a.Kind, ID: a.ID}
}

func (a Account) Value(f Field) decimal.Decimal {
	switch f {
	case FieldFrozenBalance:
		return a.FrozenBalance
	case FieldSilver:
		return a.Silver
	default:
		return a.Balance
	}
}

type TaskStatus string

const (
	TaskDraft  TaskStatus = "DRAFT"
	TaskActive TaskStatus = "ACTIVE"
	TaskPaused TaskStatus = "PAUSED"
	TaskClosed TaskStatus = "CLOSED"
)

type Task struct {
	ID           int64           `db:"id"`
	MerchantID   int64           `db:"merchant_id"`
	Title        string          `db:"title"`
	TotalSlots   int             `db:"total_slots"`
	ClaimedSlots int             `db:"claimed_slots"`
	StepCount    int             `db:"step_count"`
	Principal    decimal.Decimal `db:"principal"`
	Commission   decimal.Decimal `db:"commission"`
	SilverReward decimal.Decimal `db:"silver_reward"`
	Status       TaskStatus      `db:"status"`
	// AutoClosed is set when the task was closed because its slots ran out,
	// as opposed to a manual close by the merchant.
	AutoClosed bool      `db:"auto_closed"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (t Task) HasCapacity() bool {
	return t.ClaimedSlots < t.TotalSlots
}

type OrderStatus string

const (
	OrderClaimed        OrderStatus = "CLAIMED"
	OrderInProgress     OrderStatus = "IN_PROGRESS"
	OrderAwaitingReview OrderStatus = "AWAITING_REVIEW"
	OrderApproved       OrderStatus = "APPROVED"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCancelled      OrderStatus = "CANCELLED"
	OrderRejected       OrderStatus = "REJECTED"
)

// OpenOrderStatuses are the states a buyer can still act on.
var OpenOrderStatuses = []OrderStatus{OrderClaimed, OrderInProgress}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled || s == OrderRejected
}

type Order struct {
	ID           int64           `db:"id"`
	OrderNo      string          `db:"order_no"`
	TaskID       int64           `db:"task_id"`
	BuyerID      int64           `db:"buyer_id"`
	MerchantID   int64           `db:"merchant_id"`
	Principal    decimal.Decimal `db:"principal"`
	Commission   decimal.Decimal `db:"commission"`
	SilverReward decimal.Decimal `db:"silver_reward"`
	FrozenAmount decimal.Decimal `db:"frozen_amount"`
	CurrentStep  int             `db:"current_step"`
	TotalSteps   int             `db:"total_steps"`
	Status       OrderStatus     `db:"status"`
	Reason       string          `db:"reason"`
	ClaimDate    time.Time       `db:"claim_date"`
	DeadlineAt   time.Time       `db:"deadline_at"`
	ClaimedAt    time.Time       `db:"claimed_at"`
	StartedAt    *time.Time      `db:"started_at"`
	SubmittedAt  *time.Time      `db:"submitted_at"`
	ApprovedAt   *time.Time      `db:"approved_at"`
	CompletedAt  *time.Time      `db:"completed_at"`
	CancelledAt  *time.Time      `db:"cancelled_at"`
	RejectedAt   *time.Time      `db:"rejected_at"`
}

type OrderStep struct {
	OrderID     int64           `db:"order_id"`
	StepIndex   int             `db:"step_index"`
	Payload     json.RawMessage `db:"payload"`
	SubmittedAt time.Time       `db:"submitted_at"`
}

type CurrencyType string

const (
	CurrencyBalance CurrencyType = "BALANCE"
	CurrencySilver  CurrencyType = "SILVER"
)

func (c CurrencyType) Valid() bool {
	return c == CurrencyBalance || c == CurrencySilver
}

// Field is the account column a withdrawal in this currency draws from.
func (c CurrencyType) Field() Field {
	if c == CurrencySilver {
		return FieldSilver
	}
	return FieldBalance
}

type WithdrawalStatus string

const (
	WithdrawalPending                 WithdrawalStatus = "PENDING"
	WithdrawalApprovedPendingTransfer WithdrawalStatus = "APPROVED_PENDING_TRANSFER"
	WithdrawalRejected                WithdrawalStatus = "REJECTED"
	WithdrawalCompleted               WithdrawalStatus = "COMPLETED"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

type PayoutDetails struct {
	BankCardID  int64  `json:"bank_card_id"`
	AccountName string `json:"account_name"`
	CardNumber  string `json:"card_number"`
}

type Withdrawal struct {
	ID             int64            `db:"id"`
	SerialNo       string           `db:"serial_no"`
	OwnerKind      AccountKind      `db:"owner_kind"`
	OwnerID        int64            `db:"owner_id"`
	Amount         decimal.Decimal  `db:"amount"`
	Fee            decimal.Decimal  `db:"fee"`
	ActualAmount   decimal.Decimal  `db:"actual_amount"`
	Currency       CurrencyType     `db:"currency_type"`
	Status         WithdrawalStatus `db:"status"`
	BankCardID     int64            `db:"bank_card_id"`
	AccountName    string           `db:"account_name"`
	CardNumber     string           `db:"card_number"`
	IdempotencyKey string           `db:"idempotency_key"`
	Remark         string           `db:"remark"`
	ReviewedBy     *int64           `db:"reviewed_by"`
	ReviewedAt     *time.Time       `db:"reviewed_at"`
	CompletedBy    *int64           `db:"completed_by"`
	CompletedAt    *time.Time       `db:"completed_at"`
	CreatedAt      time.Time        `db:"created_at"`
}

func (w Withdrawal) Owner() AccountRef {
	return AccountRef{Kind: w.OwnerKind, ID: w.OwnerID}
}

type FinanceType string

const (
	FinanceRecharge           FinanceType = "RECHARGE"
	FinanceTaskFreeze         FinanceType = "TASK_FREEZE"
	FinanceTaskRefund         FinanceType = "TASK_REFUND"
	FinanceTaskPrincipalSpent FinanceType = "TASK_PRINCIPAL_SPENT"
	FinanceTaskCommission     FinanceType = "TASK_COMMISSION"
	FinanceTaskSilverReward   FinanceType = "TASK_SILVER_REWARD"
	FinanceWithdrawalDebit    FinanceType = "WITHDRAWAL_DEBIT"
	FinanceWithdrawalRefund   FinanceType = "WITHDRAWAL_REFUND"
	FinanceAdminAdjustment    FinanceType = "ADMIN_ADJUSTMENT"
)

// FinanceRecord is one signed change of one account field. Records are
// append-only.
type FinanceRecord struct {
	ID            int64           `db:"id"`
	OwnerKind     AccountKind     `db:"owner_kind"`
	OwnerID       int64           `db:"owner_id"`
	Field         Field           `db:"field"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	FinanceType   FinanceType     `db:"finance_type"`
	CorrelationID uuid.UUID       `db:"correlation_id"`
	Remark        string          `db:"remark"`
	CreatedAt     time.Time       `db:"created_at"`
}

type ReleaseDestination string

const (
	ReleaseRefundToBalance ReleaseDestination = "REFUND_TO_BALANCE"
	ReleasePayout          ReleaseDestination = "PAYOUT"
)

// Release describes how frozen merchant funds leave the frozen balance.
// For PAYOUT, Commission and Silver are credited to BuyerID and the rest of
// Amount is consumed as spent principal.
type Release struct {
	MerchantID    int64
	Amount        decimal.Decimal
	Destination   ReleaseDestination
	BuyerID       int64
	Commission    decimal.Decimal
	Silver        decimal.Decimal
	CorrelationID uuid.UUID
	Remark        string
}

// Reconciliation compares account fields with the sum of their finance records.
type Reconciliation struct {
	Account  Account
	Recorded map[Field]decimal.Decimal
}

func (r Reconciliation) Balanced() bool {
	for _, f := range []Field{FieldBalance, FieldFrozenBalance, FieldSilver} {
		if !r.Account.Value(f).Equal(r.Recorded[f]) {
			return false
		}
	}
	return true
}

type BatchResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role Role
}

// Account returns the ledger account the actor owns. Admins own none.
func (a Actor) Account() (AccountRef, bool) {
	switch a.Role {
	case RoleBuyer:
		return Buyer(a.ID), true
	case RoleMerchant:
		return Merchant(a.ID), true
	}
	return AccountRef{}, false
}

type WithdrawalRequest struct {
	Owner          AccountRef
	Amount         decimal.Decimal
	Currency       CurrencyType
	Payout         PayoutDetails
	IdempotencyKey string
}

// Matches reports whether w was created from an equivalent request.
func (r WithdrawalRequest) Matches(w Withdrawal) bool {
	return w.Owner() == r.Owner &&
		w.Amount.Equal(r.Amount) &&
		w.Currency == r.Currency &&
		w.BankCardID == r.Payout.BankCardID &&
		w.AccountName == r.Payout.AccountName &&
		w.CardNumber == r.Payout.CardNumber
}
