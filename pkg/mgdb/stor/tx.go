package stor

import (
	"github.com/mergington/activities/pkg/config"
	"gorm.io/gorm"
)

const minTxRetry = 3

// WithTxRetry runs fn in a transaction, retrying failed transactions up to
// MG_TX_RETRY times (never fewer than 3). A store Error is an answer, not a
// failure, and is returned without retrying.
func WithTxRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error

	retryCount := config.GetIntKeyWithDefault(config.KeyTxRetry, minTxRetry)
	if retryCount < minTxRetry {
		retryCount = minTxRetry
	}

	for i := 0; i < retryCount; i++ {
		err = db.Transaction(fn)
		if _, isStorErr := AsError(err); err == nil || isStorErr {
			break
		}
	}

	return err
}
