package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column in outbox_events.
type OutboxAggregateType string

const (
	AggregateSellRequest OutboxAggregateType = "sell_request"
	AggregateStockItem   OutboxAggregateType = "stock_item"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSellRequest,
	AggregateStockItem,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column in outbox_events.
type OutboxEventType string

const (
	EventRequestCreated    OutboxEventType = "request_created"
	EventRequestApproved   OutboxEventType = "request_approved"
	EventRequestCancelled  OutboxEventType = "request_cancelled"
	EventRiderAssigned     OutboxEventType = "rider_assigned"
	EventFinalPriceReady   OutboxEventType = "final_price_ready"
	EventRequestRejected   OutboxEventType = "request_rejected_by_rider"
	EventSellerDecided     OutboxEventType = "seller_decided"
	EventRequestCompleted  OutboxEventType = "request_completed"
	EventPayoutSettled     OutboxEventType = "payout_settled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventRequestCreated,
	EventRequestApproved,
	EventRequestCancelled,
	EventRiderAssigned,
	EventFinalPriceReady,
	EventRequestRejected,
	EventSellerDecided,
	EventRequestCompleted,
	EventPayoutSettled,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxDLQErrorReason maps to the error_reason column in outbox_dlq.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)
