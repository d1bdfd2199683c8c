package tui

import (
	"github.com/charmbracelet/bubbles/list"

	"taskdash/internal/model"
	"taskdash/internal/perm"
)

const dashboardChromeHeight = 5 // header, blank, flash line, footer, status

type dashboardModel struct {
	identity model.Identity
	state    loadState

	// tasks is the last successful List() response, unfiltered.
	tasks []model.Task
	busy  map[string]bool
	list  list.Model

	modal   modalKind
	form    *taskFormModel
	formSeq int

	confirmTask  model.Task
	confirmFocus confirmModalFocus

	detailTask model.Task
}

func newDashboard(id model.Identity) dashboardModel {
	return dashboardModel{
		identity: id,
		state:    stateLoading,
		busy:     map[string]bool{},
		list:     newTaskList(),
	}
}

func (d *dashboardModel) resize(w, h int) {
	lh := h - dashboardChromeHeight
	if lh < 2 {
		lh = 2
	}
	d.list.SetSize(w, lh)
}

// setTasks replaces the collection wholesale with a server response.
func (d *dashboardModel) setTasks(tasks []model.Task) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	d.tasks = tasks
	d.state = stateReady
	d.rebuild()
}

// visible is the filtered collection the user may see.
func (d dashboardModel) visible() []model.Task {
	return perm.Visible(d.identity, d.tasks)
}

// rebuild recomputes rows (and their affordances) while keeping the cursor on
// the same task where possible.
func (d *dashboardModel) rebuild() {
	prevID := ""
	if it, ok := d.selected(); ok {
		prevID = it.task.ID
	}
	vis := d.visible()
	items := make([]list.Item, 0, len(vis))
	for _, t := range vis {
		items = append(items, taskItem{
			task:         t,
			canManage:    perm.CanManage(d.identity, t),
			ownedByOther: perm.OwnedByOther(d.identity, t),
			busy:         d.busy[t.ID],
		})
	}
	d.list.SetItems(items)
	if prevID != "" {
		d.selectID(prevID)
	}
}

func (d *dashboardModel) selectID(id string) bool {
	for i, it := range d.list.Items() {
		if ti, ok := it.(taskItem); ok && ti.task.ID == id {
			d.list.Select(i)
			return true
		}
	}
	return false
}

func (d dashboardModel) selected() (taskItem, bool) {
	it, ok := d.list.SelectedItem().(taskItem)
	return it, ok
}

func (d *dashboardModel) setBusy(id string, busy bool) {
	if id == "" {
		return
	}
	if busy {
		d.busy[id] = true
	} else {
		delete(d.busy, id)
	}
	d.rebuild()
}

func (d *dashboardModel) openForm(existing *model.Task) {
	d.formSeq++
	f := newTaskForm(d.formSeq, existing)
	d.form = &f
	d.modal = modalTaskForm
}

func (d *dashboardModel) closeModal() {
	d.modal = modalNone
	d.form = nil
	d.confirmTask = model.Task{}
	d.detailTask = model.Task{}
}
