package behavior

import (
	"context"
	"log/slog"
	"time"

	"github.com/bjaus/mediator"
)

// Logging logs every dispatch through logger: "handling" and "handled" at
// debug level, failed outcomes at warn level with their code and cause.
// A nil logger means slog.Default().
func Logging(logger *slog.Logger) mediator.Behavior {
	if logger == nil {
		logger = slog.Default()
	}
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		log := logger.With(
			"message", mediator.NameOf(msg),
			"dispatch_id", mediator.DispatchID(ctx),
		)
		log.DebugContext(ctx, "handling")

		start := time.Now()
		out, err := next(ctx, msg)
		elapsed := time.Since(start)

		res := mediator.Normalize(out, err)
		if res.Success() {
			log.DebugContext(ctx, "handled", "duration", elapsed)
			return out, err
		}

		attrs := []any{"code", res.MustCode(), "duration", elapsed}
		if cause := res.Err(); cause != nil {
			attrs = append(attrs, "error", cause.Error())
		}
		log.WarnContext(ctx, "failed", attrs...)
		return out, err
	})
}
