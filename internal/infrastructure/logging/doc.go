// Package logging provides structured logging using uber/zap.
//
// Production loggers emit JSON; development loggers emit colored console
// output at debug level. Components take a child logger via Named so every
// line carries its origin:
//
//	logger := logging.NewDefault()
//	widgets := logger.Named("widgets")
//	widgets.Info("widget created", zap.String("widget_id", id))
package logging
