package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Flatten hooks
	f := NoopFlattenHooks{}
	f.OnDecodeStart(ctx, "traces.json")
	f.OnDecodeComplete(ctx, "traces.json", time.Second, nil)
	f.OnFlattenStart(ctx, "collection")
	f.OnFlattenComplete(ctx, "collection", 42, time.Second, nil)
	f.OnExportStart(ctx, "csv")
	f.OnExportComplete(ctx, "csv", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "table")
	c.OnCacheMiss(ctx, "table")
	c.OnCacheSet(ctx, "table", 1024)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnSave(ctx, "id-1", 42, time.Second, nil)
	s.OnLoad(ctx, "id-1", time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Flatten().(NoopFlattenHooks); !ok {
		t.Error("Flatten() should return NoopFlattenHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	// Set custom hooks
	customFlatten := &testFlattenHooks{}
	SetFlattenHooks(customFlatten)
	if Flatten() != customFlatten {
		t.Error("SetFlattenHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Flatten().(NoopFlattenHooks); !ok {
		t.Error("Reset() should restore NoopFlattenHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testFlattenHooks{}
	SetFlattenHooks(custom)

	// Setting nil should be ignored
	SetFlattenHooks(nil)

	if Flatten() != custom {
		t.Error("SetFlattenHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testFlattenHooks struct{ NoopFlattenHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
