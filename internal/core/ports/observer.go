package ports

import (
	"time"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
)

// Observer receives engine events for metrics collection.
type Observer interface {
	// OperationCompleted is called once per engine operation; err is nil on success.
	OperationCompleted(operation string, err error, elapsed time.Duration)
	SessionBound(role domain.Role)
	SessionCleared()
	OrderTransitioned(transition string)
	ReportBilled(cost int64)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) OperationCompleted(string, error, time.Duration) {}
func (NopObserver) SessionBound(domain.Role)                        {}
func (NopObserver) SessionCleared()                                 {}
func (NopObserver) OrderTransitioned(string)                        {}
func (NopObserver) ReportBilled(int64)                              {}
