package thumbnail

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		id      string
		ts      int64
		want    string
		wantErr bool
	}{
		{"m1", 0, "m1_0.jpg", false},
		{"v-42", 17, "v-42_17.jpg", false},
		{"", 0, "", true},
		{"../etc", 0, "", true},
		{"a/b", 0, "", true},
		{"..", 0, "", true},
	}
	for _, tc := range tests {
		got, err := Key(tc.id, tc.ts)
		if (err != nil) != tc.wantErr {
			t.Errorf("Key(%q) err = %v, wantErr %v", tc.id, err, tc.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Key(%q) err = %v, want ErrInvalidKey", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("Key(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestGet_Miss(t *testing.T) {
	c := New(t.TempDir())
	b, ok, err := c.Get("m1_0.jpg")
	if err != nil || ok || b != nil {
		t.Errorf("Get = %v, %v, %v; want miss", b, ok, err)
	}
}

func TestPutIfAbsent_ThenGet(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	got, err := c.PutIfAbsent("m1_0.jpg", []byte("first"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("put returned %q", got)
	}

	b, ok, err := c.Get("m1_0.jpg")
	if err != nil || !ok || string(b) != "first" {
		t.Errorf("Get = %q, %v, %v", b, ok, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestPutIfAbsent_LoserReadsWinner(t *testing.T) {
	c := New(t.TempDir())
	if _, err := c.PutIfAbsent("m1_3.jpg", []byte("winner")); err != nil {
		t.Fatal(err)
	}
	got, err := c.PutIfAbsent("m1_3.jpg", []byte("loser"))
	if err != nil {
		t.Fatalf("second writer must not fail: %v", err)
	}
	if string(got) != "winner" {
		t.Errorf("second writer got %q, want the winner's bytes", got)
	}
}

func TestPutIfAbsent_Concurrent(t *testing.T) {
	c := New(t.TempDir())
	const writers = 8

	results := make([][]byte, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.PutIfAbsent("race_0.jpg", []byte{byte('a' + i)})
			if err != nil {
				t.Errorf("writer %d: %v", i, err)
				return
			}
			results[i] = b
		}()
	}
	wg.Wait()

	final, ok, err := c.Get("race_0.jpg")
	if err != nil || !ok {
		t.Fatalf("Get: %v %v", ok, err)
	}
	for i, r := range results {
		if string(r) != string(final) {
			t.Errorf("writer %d saw %q, cached %q", i, r, final)
		}
	}
}

func TestPath_RejectsTraversal(t *testing.T) {
	c := New(t.TempDir())
	for _, key := range []string{"../x.jpg", "sub/x.jpg", filepath.Join("..", "x.jpg")} {
		if _, _, err := c.Get(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Get(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := New(dir).EnsureDir(); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("dir not created: %v", err)
	}
}
