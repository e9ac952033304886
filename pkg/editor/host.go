package editor

import "github.com/ha1tch/pix-toolkit/pkg/pix"

// Host is the shell an Editor runs in. The editor calls it synchronously
// from its event handlers; the host performs I/O, dialogs and clipboard
// access and hands results back through Editor methods such as LoadData,
// SetName and Paste.
type Host interface {
	// DataChanged is called after every committed mutation with a copy
	// of the document that the host may keep.
	DataChanged(doc *pix.Document)
	RequestSave(doc *pix.Document)
	RequestLoad()
	RequestClipboardCopy(text string)
	// NamePending reports a rectangle created by a gesture; the host asks
	// the user for a name and calls SetName.
	NamePending(rectID string)
	OpenPropertyEditor(sel pix.Selection)
	ShowContextMenu(sel pix.Selection, at pix.Point)
}

// BaseHost implements Host with no-ops. Embed it to implement only the
// callbacks a host cares about.
type BaseHost struct{}

func (BaseHost) DataChanged(*pix.Document) {}
func (BaseHost) RequestSave(*pix.Document) {}
func (BaseHost) RequestLoad() {}
func (BaseHost) RequestClipboardCopy(string) {}
func (BaseHost) NamePending(string) {}
func (BaseHost) OpenPropertyEditor(pix.Selection) {}
func (BaseHost) ShowContextMenu(pix.Selection, pix.Point) {}

var _ Host = BaseHost{}
