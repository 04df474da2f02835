package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// fileChangedMsg is sent when the offline news file was written.
type fileChangedMsg struct{}

// newWatcher watches the directory holding path, since editors often
// replace the file on save.
func newWatcher(path string) *fsnotify.Watcher {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
		return nil
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		log.Error("error adding dir to fsnotify watcher", "error", err)
		_ = w.Close()
		return nil
	}

	log.Info("fsnotify watching dir", "dir", dir)
	return w
}

func watchFile(w *fsnotify.Watcher, path string) tea.Cmd {
	path = filepath.Clean(path)
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				return fileChangedMsg{}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Debug("fsnotify error", "file", path, "error", err)
			}
		}
	}
}
