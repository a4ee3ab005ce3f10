package command

import (
	"context"
	"math"
	"time"

	"github.com/mklimuk/pressure/mensor"
)

// NewSimulator returns an instrument hovering around one atmosphere that
// settles every few seconds. It reports the unit selected with SetUnit.
func NewSimulator() *mensor.MockController {
	start := time.Now()
	return mensor.NewMockController(
		func(ctx context.Context) (mensor.Reading, error) {
			t := time.Since(start).Seconds()
			return mensor.Reading{Value: 14.696 + 0.05*math.Sin(t)}, nil
		},
		func(ctx context.Context) (bool, error) {
			return int(time.Since(start).Seconds())%10 >= 5, nil
		},
	)
}
