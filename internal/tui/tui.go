// Package tui is a terminal board over the same task list and gateway the
// web pages use.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskflow/internal/filter"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/tasklist"
)

const (
	viewHeader     = "header"
	viewFooter     = "footer"
	viewNotStarted = "not_started"
	viewInProgress = "in_progress"
	viewCompleted  = "completed"
	viewDetail     = "detail"
	viewHistory    = "history"
	viewForm       = "form"
	viewHelp       = "help"
)

// columnViews lines up with model.Statuses.
var columnViews = []string{viewNotStarted, viewInProgress, viewCompleted}

// Gateway is the part of the task gateway the board drives.
type Gateway interface {
	ListTasks(ctx context.Context, user model.User) ([]model.Task, error)
	CreateTask(ctx context.Context, user model.User, draft model.TaskDraft) (model.Task, error)
	UpdateStatus(ctx context.Context, user model.User, id int64, status model.Status) (model.Task, bool, error)
	UpdateFields(ctx context.Context, user model.User, id int64, patch model.TaskPatch) (model.Task, bool, error)
	DeleteTask(ctx context.Context, user model.User, id int64) (bool, error)
	ListHistory(ctx context.Context, user model.User, taskID int64) ([]model.HistoryRecord, error)
}

type UI struct {
	gateway Gateway
	user    model.User
	state   *tasklist.State
	gui     *gocui.Gui
	now     func() time.Time

	columns  [][]model.Task
	selected []int
	history  []model.HistoryRecord

	// focus is a column index, or -1 for the history pane.
	focus           int
	selectedHistory int

	timeFrame int
	priority  int

	form       *formState
	formEditor *formEditor
	helpActive bool
	status     string
}

type formState struct {
	taskID  int64
	version time.Time
	fields  []formField
	index   int
}

type formEditor struct {
	ui *UI
}

func newUI(gateway Gateway, user model.User) *UI {
	return &UI{
		gateway:  gateway,
		user:     user,
		state:    tasklist.New(),
		now:      time.Now,
		columns:  make([][]model.Task, len(model.Statuses)),
		selected: make([]int, len(model.Statuses)),
	}
}

// Run opens the board for user and blocks until it is closed.
func Run(gateway Gateway, user model.User) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return goerrors.Wrap(err, 0)
	}
	defer gui.Close()

	ui := newUI(gateway, user)
	ui.gui = gui
	ui.formEditor = &formEditor{ui: ui}
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return goerrors.Wrap(err, 0)
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return goerrors.Wrap(err, 0)
	}
	return nil
}

type binding struct {
	view    string
	key     any
	handler func(*gocui.Gui, *gocui.View) error
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []binding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", 'r', u.reload},
		{"", 'a', u.addTask},
		{"", 'e', u.editTask},
		{"", 'd', u.deleteTask},
		{"", ']', u.advanceStatus},
		{"", '[', u.revertStatus},
		{"", 't', u.cycleTimeFrame},
		{"", 'p', u.cyclePriority},
		{"", 'o', u.toggleSort},
		{"", 'g', u.clearFilters},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchFocus},
		{"", '1', u.focusColumn(0)},
		{"", '2', u.focusColumn(1)},
		{"", '3', u.focusColumn(2)},
		{"", '4', u.focusHistory},
		{viewForm, gocui.KeyEnter, u.submitForm},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
		{viewHelp, '?', u.closeHelp},
	}
	for _, name := range append(columnViews, viewHistory) {
		bindings = append(bindings,
			binding{name, gocui.KeyArrowDown, u.moveDown},
			binding{name, 'j', u.moveDown},
			binding{name, gocui.KeyArrowUp, u.moveUp},
			binding{name, 'k', u.moveUp},
			binding{name, gocui.MouseWheelDown, u.moveDown},
			binding{name, gocui.MouseWheelUp, u.moveUp},
		)
	}
	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}

	for i, name := range columnViews {
		column := i
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: name, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onColumnClick(gui, column, opts)
		}}); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	u.renderHeader(headerView)

	footerY1 := max(maxY-1, 2)
	footerY0 := max(footerY1-3, 2)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 2
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}
	l := computeLayout(maxX, bodyBottom-bodyTop+1)

	boardY1 := bodyTop + l.boardHeight - 1
	for i, name := range columnViews {
		x0 := i * l.columnWidth
		x1 := x0 + l.columnWidth - 1
		if i == len(columnViews)-1 {
			x1 = maxX - 1
		}
		view, err := gui.SetView(name, x0, bodyTop, x1, boardY1, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		if goerrors.Is(err, gocui.ErrUnknownView) {
			view.TitleColor = statusColor(model.Statuses[i])
		}
		view.Title = fmt.Sprintf("%d %s (%d)", i+1, model.Statuses[i].DisplayName(), len(u.columns[i]))
		applyViewStyle(view, u.focus == i)
		u.renderColumn(view, i)
	}

	detailY0 := boardY1 + 1
	splitX := maxX / 2
	detailView, err := gui.SetView(viewDetail, 0, detailY0, splitX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "Task"
		detailView.Wrap = true
	}
	applyViewStyle(detailView, false)
	u.renderDetail(detailView)

	historyView, err := gui.SetView(viewHistory, splitX, detailY0, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "4 History"
	}
	applyViewStyle(historyView, u.focus == -1)
	u.renderHistory(historyView)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if u.form == nil && !u.helpActive {
		_, _ = gui.SetCurrentView(u.focusView())
	}
	gui.Cursor = u.form != nil
	return nil
}

type layout struct {
	columnWidth int
	boardHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width, 30)
	safeHeight := max(height, 8)

	boardHeight := int(float64(safeHeight) * 0.6)
	if boardHeight < 4 {
		boardHeight = 4
	}
	if safeHeight-boardHeight < 4 {
		boardHeight = max(safeHeight-4, 4)
	}
	return layout{
		columnWidth: safeWidth / len(columnViews),
		boardHeight: boardHeight,
	}
}

// loadTasks replaces the list with a fresh read from the gateway.
func (u *UI) loadTasks() error {
	tasks, err := u.gateway.ListTasks(context.Background(), u.user)
	if err != nil {
		return err
	}
	u.state.Load(tasks)
	return u.regroup()
}

// regroup rebuilds the columns from the state's current view.
func (u *UI) regroup() error {
	for i, group := range u.state.Grouped() {
		u.columns[i] = group.Tasks
		if u.selected[i] >= len(group.Tasks) {
			u.selected[i] = max(len(group.Tasks)-1, 0)
		}
	}
	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	selected := u.selectedTask()
	if selected == nil {
		u.history = nil
		return nil
	}
	history, err := u.gateway.ListHistory(context.Background(), u.user, selected.ID)
	if err != nil {
		return err
	}
	u.history = history
	if u.selectedHistory >= len(u.history) {
		u.selectedHistory = max(len(u.history)-1, 0)
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	spec := u.state.Filter()

	filters := "none"
	if chips := spec.Chips(); len(chips) > 0 {
		labels := make([]string, 0, len(chips))
		for _, chip := range chips {
			labels = append(labels, chip.Label)
		}
		filters = strings.Join(labels, ", ")
	}

	sortLabel := "none"
	switch u.state.Sort().Direction {
	case tasklist.SortAsc:
		sortLabel = "due date, earliest first"
	case tasklist.SortDesc:
		sortLabel = "due date, latest first"
	}

	fmt.Fprintf(view, "%s | Showing %d of %d | Filters: %s | Sort: %s",
		u.user.Email, len(u.state.Visible()), len(u.state.All()), filters, sortLabel)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | e edit | d delete | ] advance | [ move back | 1-3 columns | 4 history | tab cycle")
	fmt.Fprintln(view, "t time frame | p priority | o sort | g clear | r reload | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderColumn(view *gocui.View, column int) {
	view.Clear()
	tasks := u.columns[column]
	if len(tasks) == 0 && column == 0 && len(u.state.All()) == 0 {
		fmt.Fprint(view, "No Tasks Yet! Press a to add one.")
		return
	}
	now := u.now()
	for i, task := range tasks {
		prefix := " "
		if i == u.selected[column] {
			if u.focus == column {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task, now))
	}
	if u.focus == column && len(tasks) > 0 {
		view.SetCursor(0, u.selected[column])
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	selected := u.selectedTask()
	if selected == nil {
		fmt.Fprint(view, "No task selected")
		return
	}
	fmt.Fprint(view, strings.Join(detailLines(*selected, u.now()), "\n"))
}

func (u *UI) renderHistory(view *gocui.View) {
	view.Clear()
	if len(u.history) == 0 {
		fmt.Fprint(view, "No history yet")
		return
	}
	for index, entry := range u.history {
		prefix := " "
		if u.focus == -1 && index == u.selectedHistory {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatHistory(entry))
	}
	if u.focus == -1 {
		view.SetCursor(0, u.selectedHistory)
	}
}

func (u *UI) onColumnClick(gui *gocui.Gui, column int, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(columnViews[column])
	if err != nil {
		return nil
	}
	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	u.focus = column
	u.selected[column] = max(min(row, len(u.columns[column])-1), 0)
	return u.loadHistory()
}

// selectedTask is the highlighted card of the focused column, or of the
// column last focused when the history pane has focus.
func (u *UI) selectedTask() *model.Task {
	column := u.focus
	if column < 0 {
		column = u.lastColumn()
	}
	tasks := u.columns[column]
	if i := u.selected[column]; i >= 0 && i < len(tasks) {
		return &tasks[i]
	}
	return nil
}

func (u *UI) lastColumn() int {
	for i, tasks := range u.columns {
		if len(tasks) > 0 && u.selected[i] < len(tasks) {
			return i
		}
	}
	return 0
}

func (u *UI) focusView() string {
	if u.focus < 0 {
		return viewHistory
	}
	return columnViews[u.focus]
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := u.focus + 1
	if next >= len(columnViews) {
		next = -1
	}
	return u.setFocus(gui, next)
}

func (u *UI) focusColumn(column int) func(*gocui.Gui, *gocui.View) error {
	return func(gui *gocui.Gui, _ *gocui.View) error {
		return u.setFocus(gui, column)
	}
}

func (u *UI) focusHistory(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, -1)
}

func (u *UI) setFocus(gui *gocui.Gui, focus int) error {
	if u.inputActive() {
		return nil
	}
	u.focus = focus
	if gui != nil {
		_, _ = gui.SetCurrentView(u.focusView())
	}
	if focus < 0 {
		return nil
	}
	return u.loadHistory()
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus < 0 {
		if u.selectedHistory < len(u.history)-1 {
			u.selectedHistory++
		}
		return nil
	}
	if u.selected[u.focus] < len(u.columns[u.focus])-1 {
		u.selected[u.focus]++
		return u.loadHistory()
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus < 0 {
		if u.selectedHistory > 0 {
			u.selectedHistory--
		}
		return nil
	}
	if u.selected[u.focus] > 0 {
		u.selected[u.focus]--
		return u.loadHistory()
	}
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) advanceStatus(gui *gocui.Gui, _ *gocui.View) error {
	return u.shiftStatus(1)
}

func (u *UI) revertStatus(gui *gocui.Gui, _ *gocui.View) error {
	return u.shiftStatus(-1)
}

// taskGoneMessage is shown when a task was deleted elsewhere before an update.
const taskGoneMessage = "Task no longer exists"

// shiftStatus moves the selected card one column along the workflow. The
// card stays selected in its new column.
func (u *UI) shiftStatus(delta int) error {
	if u.inputActive() || u.focus < 0 {
		return nil
	}
	selected := u.selectedTask()
	target := u.focus + delta
	if selected == nil || target < 0 || target >= len(model.Statuses) {
		return nil
	}

	task, changed, err := u.gateway.UpdateStatus(context.Background(), u.user, selected.ID, model.Statuses[target])
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	if task.ID == 0 {
		u.status = taskGoneMessage
		u.state.Remove(selected.ID)
		return u.regroup()
	}
	if !changed {
		return nil
	}
	u.state.Upsert(task)
	if err := u.regroup(); err != nil {
		return err
	}
	for i, t := range u.columns[target] {
		if t.ID == task.ID {
			u.focus = target
			u.selected[target] = i
			break
		}
	}
	return u.loadHistory()
}

func (u *UI) cycleTimeFrame(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.timeFrame = (u.timeFrame + 1) % (len(filter.TimeFrames) + 1)
	return u.applyFilter()
}

func (u *UI) cyclePriority(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.priority = (u.priority + 1) % (len(model.Priorities) + 1)
	return u.applyFilter()
}

func (u *UI) clearFilters(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.timeFrame = 0
	u.priority = 0
	return u.applyFilter()
}

// applyFilter turns the cycle positions into a filter; position zero means
// the dimension is off.
func (u *UI) applyFilter() error {
	var spec filter.Spec
	if u.timeFrame > 0 {
		spec.TimeFrames = []filter.TimeFrame{filter.TimeFrames[u.timeFrame-1]}
	}
	if u.priority > 0 {
		spec.Priorities = []model.Priority{model.Priorities[u.priority-1]}
	}
	u.state.SetFilter(spec)
	return u.regroup()
}

func (u *UI) toggleSort(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := tasklist.SortAsc
	switch u.state.Sort().Direction {
	case tasklist.SortAsc:
		next = tasklist.SortDesc
	case tasklist.SortDesc:
		next = tasklist.SortNone
	}
	u.state.SetSort(tasklist.SortSpec{Direction: next})
	return u.regroup()
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closeOverlay(gui, viewHelp)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = &formState{fields: buildFormFields(nil)}
	return nil
}

func (u *UI) editTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = &formState{
		taskID:  selected.ID,
		version: selected.UpdatedAt,
		fields:  buildFormFields(selected),
	}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(len(u.form.fields)+2, max(8, maxY-2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = "New Task"
	if u.form.taskID != 0 {
		view.Title = "Edit Task"
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// submitForm creates or edits the task. On failure the form stays open with
// the error in the footer.
func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	var (
		task model.Task
		err  error
	)
	if u.form.taskID == 0 {
		var draft model.TaskDraft
		if draft, err = draftFromFields(u.form.fields); err == nil {
			task, err = u.gateway.CreateTask(context.Background(), u.user, draft)
		}
		if err == nil && model.Status(u.form.fields[fieldStatus].Value) != task.Status {
			task, _, err = u.gateway.UpdateStatus(context.Background(), u.user, task.ID, model.Status(u.form.fields[fieldStatus].Value))
		}
	} else {
		var patch model.TaskPatch
		if patch, err = patchFromFields(u.form.fields, u.form.version); err == nil {
			task, _, err = u.gateway.UpdateFields(context.Background(), u.user, u.form.taskID, patch)
		}
	}
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			u.status = "Task was changed elsewhere; press r to reload before editing"
		} else {
			u.status = err.Error()
		}
		return nil
	}

	if task.ID == 0 {
		u.state.Remove(u.form.taskID)
		u.status = taskGoneMessage
	} else {
		u.state.Upsert(task)
		u.status = ""
	}
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return u.regroup()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		value := field.Value
		if field.Choices != nil {
			value = displayChoice(value)
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, value)
	}
	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label)) + len([]rune(current.Value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if field.Choices != nil {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			cycleChoice(field, 1)
		case gocui.KeyArrowLeft:
			cycleChoice(field, -1)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) deleteTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus < 0 {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	id := selected.ID
	if _, err := u.gateway.DeleteTask(context.Background(), u.user, id); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	u.state.Remove(id)
	return u.regroup()
}

func (u *UI) closeOverlay(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	_, _ = gui.SetCurrentView(u.focusView())
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  1 Not Started | 2 In Progress | 3 Completed | 4 History | tab cycle",
		"  j/k or arrows move selection, mouse click selects a card",
		"",
		"Actions:",
		"  a add task | e edit task | d delete task",
		"  ] move to next status | [ move to previous status",
		"  enter save (form) | tab/arrows next field | esc cancel",
		"  space/left/right cycle choices (form)",
		"",
		"Filter/Sort:",
		"  t cycle time frame | p cycle priority | g clear filters",
		"  o cycle due date sort (earliest, latest, off)",
		"",
		"Other:",
		"  r reload | ? help | esc/q close help | q quit",
	}, "\n")
}

func statusColor(status model.Status) gocui.Attribute {
	switch status {
	case model.StatusNotStarted:
		return gocui.ColorYellow
	case model.StatusInProgress:
		return gocui.ColorBlue
	case model.StatusCompleted:
		return gocui.ColorGreen
	}
	return gocui.ColorDefault
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
