package storage

import "io"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSession opens the store that mirrors an unlocked seed between restarts.
// path should live under a runtime directory the OS clears at logout. An empty
// path gives a MemoryStore, so "stay logged in" only lasts as long as the process.
func OpenSession(path string) (Store, io.Closer, error) {
	if path == "" {
		return NewMemoryStore(), nopCloser{}, nil
	}
	s, err := OpenBolt(path)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}
