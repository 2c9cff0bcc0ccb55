package navwatch

import "testing"

func TestTabTracker_PageTargetsOnly(t *testing.T) {
	tr := newTabTracker()

	if tr.shouldEmit("background_page", "t1", "https://example.com/") {
		t.Error("non-page target emitted")
	}
	if tr.shouldEmit("service_worker", "t2", "https://example.com/") {
		t.Error("non-page target emitted")
	}
	if !tr.shouldEmit("page", "t3", "https://example.com/") {
		t.Error("page target not emitted")
	}
}

func TestTabTracker_DedupesConsecutiveURLs(t *testing.T) {
	tr := newTabTracker()

	if !tr.shouldEmit("page", "t1", "https://a.example.com/") {
		t.Fatal("first URL not emitted")
	}
	// Title/favicon updates repeat the same URL.
	for range 3 {
		if tr.shouldEmit("page", "t1", "https://a.example.com/") {
			t.Error("duplicate URL emitted")
		}
	}
	if !tr.shouldEmit("page", "t1", "https://b.example.com/") {
		t.Error("new URL not emitted")
	}
	// Navigating back is a real navigation again.
	if !tr.shouldEmit("page", "t1", "https://a.example.com/") {
		t.Error("return navigation not emitted")
	}
}

func TestTabTracker_TabsAreIndependent(t *testing.T) {
	tr := newTabTracker()

	tr.shouldEmit("page", "t1", "https://example.com/")
	if !tr.shouldEmit("page", "t2", "https://example.com/") {
		t.Error("second tab suppressed by first tab's URL")
	}
}

func TestTabTracker_EmptyURL(t *testing.T) {
	tr := newTabTracker()
	if tr.shouldEmit("page", "t1", "") {
		t.Error("empty URL emitted")
	}
}

func TestTabTracker_Forget(t *testing.T) {
	tr := newTabTracker()

	tr.shouldEmit("page", "t1", "https://example.com/")
	tr.forget("t1")
	if !tr.shouldEmit("page", "t1", "https://example.com/") {
		t.Error("forgotten tab still deduped")
	}
}
