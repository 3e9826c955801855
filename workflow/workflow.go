// Package workflow owns the single pending draft and routes commits
// to the record store: create for new captures, full-field update when
// an edit session is bound.
package workflow

import (
	"pitchlog/log"
	"pitchlog/notify"
	"pitchlog/store"
)

// Workflow holds at most one pending draft at a time. A new proposal
// replaces any prior pending draft; only Confirm makes a draft durable.
type Workflow struct {
	store  *store.Store
	queue  *notify.Queue
	draft  *store.Draft
	editID string
}

func New(st *store.Store, queue *notify.Queue) *Workflow {
	return &Workflow{store: st, queue: queue}
}

// Propose installs an extraction result as the pending draft, replacing
// any prior one, and asks the user to confirm.
func (w *Workflow) Propose(d store.Draft) {
	w.draft = &d
	w.queue.Push("data extracted. please confirm", notify.Info)
}

// SetDraft installs a manually entered draft without a notification.
// Manual entry and extraction converge on the same Confirm path.
func (w *Workflow) SetDraft(d store.Draft) {
	w.draft = &d
}

// Pending returns the live draft, if any.
func (w *Workflow) Pending() (store.Draft, bool) {
	if w.draft == nil {
		return store.Draft{}, false
	}
	return *w.draft, true
}

// Editing reports the record id bound to the active edit session.
func (w *Workflow) Editing() (string, bool) {
	return w.editID, w.editID != ""
}

// Confirm commits the pending draft: an update when an edit session is
// bound, a create otherwise. Clears the draft and the session either
// way. No-op without a pending draft.
func (w *Workflow) Confirm() {
	if w.draft == nil {
		return
	}
	d := *w.draft
	w.draft = nil
	if d.FinalScore == "" {
		d.FinalScore = "0 - 0"
	}

	if w.editID != "" {
		id := w.editID
		w.editID = ""
		if !w.store.Update(id, d.Fields()) {
			log.Warnf("workflow: confirm: record %s no longer exists", id)
		}
		w.queue.Push("archive updated", notify.Success)
		return
	}
	w.store.Create(d.Fields())
	w.queue.Push("performance archived", notify.Success)
}

// Discard drops the pending draft without touching the store. Silent,
// and a no-op without a pending draft.
func (w *Workflow) Discard() {
	w.draft = nil
}

// StartEdit loads an existing record into the pending draft and binds
// the edit session so Confirm routes to an update. Returns false when
// the id is unknown.
func (w *Workflow) StartEdit(id string) bool {
	r, ok := w.store.Get(id)
	if !ok {
		return false
	}
	d := store.DraftOf(r)
	w.draft = &d
	w.editID = id
	return true
}

// CancelEdit unbinds the edit session and drops the working draft.
func (w *Workflow) CancelEdit() {
	w.editID = ""
	w.draft = nil
}
