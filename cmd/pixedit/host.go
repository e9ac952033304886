package main

import (
	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/ha1tch/pix-toolkit/pkg/editor"
	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

var _ editor.Host = (*App)(nil)

func (a *App) DataChanged(doc *pix.Document) {
	a.modified = true
	a.log.Debug("data changed",
		zap.Int("rectangles", len(doc.Rectangles())),
		zap.Int("connections", len(doc.Connections())))
}

func (a *App) RequestSave(doc *pix.Document) {
	if a.filename != "" {
		a.saveTo(a.filename, doc)
		return
	}
	a.prompt("Save as: ", a.defaultDir()+"/", func(path string) {
		if path != "" {
			a.saveTo(path, doc)
		}
	})
}

func (a *App) RequestLoad() {
	a.prompt("Open: ", a.defaultDir()+"/", func(path string) {
		if path == "" {
			return
		}
		if err := a.loadFile(path); err != nil {
			a.showMessage("Error: "+err.Error(), MsgError)
			return
		}
		a.showMessage("Opened: "+path, MsgSuccess)
	})
}

func (a *App) RequestClipboardCopy(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		a.log.Warn("clipboard", zap.Error(err))
		a.showMessage("Clipboard error: "+err.Error(), MsgError)
		return
	}
	a.showMessage("Copied payload", MsgSuccess)
}

func (a *App) NamePending(rectID string) {
	a.prompt("Name: ", "", func(name string) {
		if name == "" {
			return
		}
		if err := a.ed.SetName(rectID, name); err != nil {
			a.showMessage("Error: "+err.Error(), MsgError)
		}
	})
}

func (a *App) OpenPropertyEditor(sel pix.Selection) {
	buf, ok := a.ed.BeginEdit()
	if !ok {
		return
	}
	a.edit = buf
	a.menuSelected = 0
	a.mode = ModeProperties
}

func (a *App) ShowContextMenu(sel pix.Selection, at pix.Point) {
	if sel.Empty() {
		return
	}
	a.menuItems = []string{"Delete", "Properties", "Cancel"}
	a.menuSelected = 0
	a.menuX, a.menuY = a.cells.toCell(at)
	a.mode = ModeContextMenu
}
