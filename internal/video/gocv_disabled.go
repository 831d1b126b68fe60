//go:build !gocv

package video

import (
	"fmt"

	"go.uber.org/zap"
)

func newGoCVOpener(_ *zap.Logger) (Opener, error) {
	return nil, fmt.Errorf("gocv backend not compiled in, rebuild with -tags gocv")
}
