package cleanup_test

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/cmd/shmrpc-cleanup/internal/cleanup"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/transport"
)

func testPrefix(t *testing.T) string {
	return fmt.Sprintf("shmrpc_cleanup_test_%s_%d", t.Name(), time.Now().UnixNano())
}

// TestScanAndUnlinkExactlySix covers §8 scenario 6: the cleanup utility
// removes exactly the six named objects belonging to one channel and no
// others, then a fresh create on the same name succeeds.
func TestScanAndUnlinkExactlySix(t *testing.T) {
	prefix := testPrefix(t)
	tr, err := transport.Create(api.ChannelParams{Name: prefix, BufferSize: 64, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Simulate a crash: the creator never calls Close, so the six kernel
	// objects remain on disk for the cleanup utility to find.
	_ = tr

	objs, err := cleanup.Scan(prefix)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(objs) != 6 {
		t.Fatalf("expected 6 objects, got %d: %+v", len(objs), objs)
	}

	report, err := cleanup.Unlink(prefix)
	if err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if report.Unlinked != 6 || len(report.Failures) != 0 {
		t.Fatalf("expected 6 unlinked with no failures, got %+v", report)
	}

	// A fresh create on the same name must now succeed.
	tr2, err := transport.Create(api.ChannelParams{Name: prefix, BufferSize: 64, Timeout: time.Second})
	if err != nil {
		t.Fatalf("recreate after cleanup: %v", err)
	}
	tr2.Close()
}

func TestScanMatchesOnlyPrefix(t *testing.T) {
	prefixA := testPrefix(t) + "_a"
	prefixB := testPrefix(t) + "_b"

	trA, err := transport.Create(api.ChannelParams{Name: prefixA, BufferSize: 64, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Create A: %v", err)
	}
	defer trA.Close()
	trB, err := transport.Create(api.ChannelParams{Name: prefixB, BufferSize: 64, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Create B: %v", err)
	}
	defer trB.Close()

	objs, err := cleanup.Scan(prefixA)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, obj := range objs {
		if obj.Name[:len(prefixA)] != prefixA {
			t.Fatalf("scan for prefix %q returned non-matching object %q", prefixA, obj.Name)
		}
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	if err := cleanup.PrintTable(&buf, nil); err != nil {
		t.Fatalf("PrintTable: %v", err)
	}
}
