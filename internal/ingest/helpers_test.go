package ingest

import (
	"io"
	"strings"

	"github.com/fsnotify/fsnotify"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func fsEvent(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}
