package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/burrow/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf)
	gt.V(t, logger).NotNil()

	logger.Info("test message")
	gt.S(t, buf.String()).Contains("test message")
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("warn", buf)

	logger.Info("quiet info")
	logger.Warn("loud warning")

	gt.S(t, buf.String()).NotContains("quiet info")
	gt.S(t, buf.String()).Contains("loud warning")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("verbose", buf)

	logger.Debug("debug message")
	logger.Info("info message")

	gt.S(t, buf.String()).NotContains("debug message")
	gt.S(t, buf.String()).Contains("info message")
}

func TestContextPropagation(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", buf)

	ctx := logging.With(context.Background(), logger)
	logging.From(ctx).Debug("from context")
	gt.S(t, buf.String()).Contains("from context")

	// Without a context logger, From returns the default
	gt.V(t, logging.From(context.Background())).NotNil()
}
