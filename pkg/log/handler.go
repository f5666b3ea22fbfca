package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// errorEnricher は error 属性を持つレコードへスタックトレースとエラー種別を
// 付加する slog ハンドラ。cockroachdb/errors の SafeDetails からトレースを取り出す。
type errorEnricher struct {
	next slog.Handler
}

// WrapByErrFmtHandler はレコードの error 属性を展開するハンドラでラップする。
func WrapByErrFmtHandler(next slog.Handler) slog.Handler {
	return &errorEnricher{next: next}
}

func (h *errorEnricher) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *errorEnricher) Handle(ctx context.Context, r slog.Record) error {
	var found error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			found = err
		}
		return false
	})

	if found != nil {
		r.AddAttrs(slog.String(ErrorTypeKey, errorType(found)))
		if trace := stacktraceOf(found); trace != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, trace))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *errorEnricher) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorEnricher{next: h.next.WithAttrs(attrs)}
}

func (h *errorEnricher) WithGroup(g string) slog.Handler {
	return &errorEnricher{next: h.next.WithGroup(g)}
}

// stacktraceOf は cockroachdb/errors が保持する SafeDetails の先頭要素を返す。
// スタックトレースは常に先頭に格納される。
func stacktraceOf(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) == 0 {
		return ""
	}
	return details[0]
}

// errorType は実行失敗の分類に使う、ラップを剥がした最内エラーの型名を返す。
func errorType(err error) string {
	for {
		inner := errors.UnwrapOnce(err)
		if inner == nil {
			break
		}
		err = inner
	}
	return fmt.Sprintf("%T", err)
}