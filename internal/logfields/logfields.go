package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocumentID = "document_id"
	KeyPage       = "page"
	KeyEpoch      = "epoch"
	KeyReason     = "reason"
	KeyEntries    = "entries"
	KeyDurationMS = "duration_ms"
	KeyJobID      = "job_id"
	KeyJobName    = "job_name"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyKey        = "key"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func DocumentID(id string) slog.Attr   { return slog.String(KeyDocumentID, id) }
func Page(n int) slog.Attr             { return slog.Int(KeyPage, n) }
func Epoch(id string) slog.Attr        { return slog.String(KeyEpoch, id) }
func Reason(r string) slog.Attr        { return slog.String(KeyReason, r) }
func Entries(n int) slog.Attr          { return slog.Int(KeyEntries, n) }
func JobID(id string) slog.Attr        { return slog.String(KeyJobID, id) }
func JobName(n string) slog.Attr       { return slog.String(KeyJobName, n) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Key(k string) slog.Attr           { return slog.String(KeyKey, k) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }

// Duration records d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
