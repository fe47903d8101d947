package correction

import "context"

type CorrectionRepository interface {
	CountPendingByIntern(ctx context.Context, internID string) (int, error)
}
