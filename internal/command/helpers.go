package command

import (
	"context"
	"strconv"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
)

// run submits fn to the store executor and returns its *resp.Reply
// result, surfacing a generic error reply if the submission itself
// failed (e.g. server shutting down).
//
// When c is running a queued EXEC command, cmdExec has already put the
// whole transaction on the executor goroutine and stashed that call's
// *store.Store on c.execStore — calling Submit again here would deadlock
// the executor against itself (it would be blocked running the outer
// EXEC job, unable to drain the very job queue Submit blocks on), so run
// calls fn directly against the stashed Store instead of resubmitting.
func run(d *Deps, c *ClientState, fn func(s *store.Store) *resp.Reply) *resp.Reply {
	if c != nil && c.execStore != nil {
		return fn(c.execStore)
	}
	result, submitErr := d.Store.Submit(context.Background(), func(s *store.Store) any {
		return fn(s)
	})
	if submitErr != nil {
		return resp.Err("ERR server shutting down")
	}
	return result.(*resp.Reply)
}

func parseInt(b []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	return n, err == nil
}

func parseFloat(b []byte) (float64, bool) {
	f, err := strconv.ParseFloat(string(b), 64)
	return f, err == nil
}

func upper(b []byte) string {
	return string(toUpperASCII(b))
}

func toUpperASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

func bulkArray(items [][]byte) *resp.Reply {
	out := make([]*resp.Reply, len(items))
	for i, it := range items {
		out[i] = resp.Bulk(it)
	}
	return resp.ArrSlice(out)
}

func stringArray(items []string) *resp.Reply {
	out := make([]*resp.Reply, len(items))
	for i, it := range items {
		out[i] = resp.BulkString(it)
	}
	return resp.ArrSlice(out)
}
