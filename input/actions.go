package input

import "github.com/milk9111/fpsmove/common"

// Action names a logical input action.
type Action string

const (
	ActionMovement Action = "Movement"
	ActionLook     Action = "Look"
	ActionJump     Action = "Jump"
	ActionFire     Action = "Fire"
)

// Actions lists every action a player map carries.
var Actions = []Action{ActionMovement, ActionLook, ActionJump, ActionFire}

type subscriber struct {
	id      int
	vector  func(common.Vec2)
	trigger func()
}

// ActionMap dispatches performed events to subscribers. Events are
// delivered synchronously and only while the map is enabled.
type ActionMap struct {
	enabled bool
	nextID  int
	subs    map[Action][]subscriber
}

func NewActionMap() *ActionMap {
	return &ActionMap{subs: make(map[Action][]subscriber)}
}

// Binding is a single subscription. Unbind is safe to call more than once.
type Binding struct {
	m      *ActionMap
	action Action
	id     int
}

func (b *Binding) Unbind() {
	if b == nil || b.m == nil {
		return
	}
	b.m.remove(b.action, b.id)
	b.m = nil
}

// Bound reports whether the binding is still attached to its map.
func (b *Binding) Bound() bool {
	return b != nil && b.m != nil
}

func (m *ActionMap) BindVector(action Action, fn func(common.Vec2)) *Binding {
	return m.add(action, subscriber{vector: fn})
}

func (m *ActionMap) BindTrigger(action Action, fn func()) *Binding {
	return m.add(action, subscriber{trigger: fn})
}

func (m *ActionMap) Enable() {
	if m == nil {
		return
	}
	m.enabled = true
}

func (m *ActionMap) Disable() {
	if m == nil {
		return
	}
	m.enabled = false
}

func (m *ActionMap) Enabled() bool {
	return m != nil && m.enabled
}

// Subscribers returns the number of live bindings on action.
func (m *ActionMap) Subscribers(action Action) int {
	if m == nil {
		return 0
	}
	return len(m.subs[action])
}

// PerformVector delivers a 2D axis value to the action's vector subscribers.
func (m *ActionMap) PerformVector(action Action, v common.Vec2) {
	if !m.Enabled() {
		return
	}
	for _, s := range m.snapshot(action) {
		if s.vector != nil {
			s.vector(v)
		}
	}
}

// PerformTrigger fires the action's trigger subscribers.
func (m *ActionMap) PerformTrigger(action Action) {
	if !m.Enabled() {
		return
	}
	for _, s := range m.snapshot(action) {
		if s.trigger != nil {
			s.trigger()
		}
	}
}

func (m *ActionMap) add(action Action, s subscriber) *Binding {
	if m == nil {
		return nil
	}
	if m.subs == nil {
		m.subs = make(map[Action][]subscriber)
	}
	m.nextID++
	s.id = m.nextID
	m.subs[action] = append(m.subs[action], s)
	return &Binding{m: m, action: action, id: s.id}
}

func (m *ActionMap) remove(action Action, id int) {
	list := m.subs[action]
	for i, s := range list {
		if s.id != id {
			continue
		}
		m.subs[action] = append(list[:i:i], list[i+1:]...)
		if len(m.subs[action]) == 0 {
			delete(m.subs, action)
		}
		return
	}
}

// snapshot copies the subscriber list so handlers may unbind while dispatching.
func (m *ActionMap) snapshot(action Action) []subscriber {
	list := m.subs[action]
	if len(list) == 0 {
		return nil
	}
	return append([]subscriber(nil), list...)
}
