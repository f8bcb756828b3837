package artifact

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LayoutFromConfig builds the per-kind locations from configuration
func LayoutFromConfig(cfg *config.ArtifactConfig) Layout {
	layout := DefaultLayout()
	if cfg.ExportPrefix != "" {
		layout[KindExport] = cfg.ExportPrefix
	}
	if cfg.ReportPrefix != "" {
		layout[KindReport] = cfg.ReportPrefix
	}
	if cfg.FiscalPrefix != "" {
		layout[KindFiscal] = cfg.FiscalPrefix
	}
	return layout
}

// NewSink builds the sink selected by cfg.Backend
func NewSink(ctx context.Context, cfg *config.ArtifactConfig, logger *zap.Logger) (Sink, error) {
	layout := LayoutFromConfig(cfg)

	switch cfg.Backend {
	case "", config.ArtifactBackendFile:
		logger.Info("Artifact backend: file", zap.String("base_dir", cfg.BaseDir))
		return NewFileSink(cfg.BaseDir, layout), nil
	case config.ArtifactBackendS3:
		sink, err := NewS3Sink(&cfg.S3, WithS3Logger(logger), WithS3Layout(layout))
		if err != nil {
			return nil, err
		}
		if err := sink.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Artifact backend: s3", zap.String("bucket", cfg.S3.Bucket))
		return sink, nil
	case config.ArtifactBackendRedis:
		sink, err := NewRedisSink(ctx, &cfg.Redis, layout)
		if err != nil {
			return nil, err
		}
		logger.Info("Artifact backend: redis", zap.String("addr", cfg.Redis.Addr()))
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}
