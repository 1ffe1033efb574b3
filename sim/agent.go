package sim

import "strconv"

// AgentID addresses an agent by its index in the registry.
type AgentID int

// An AgentSpec describes one agent before the simulation starts.
type AgentSpec struct {
	InitialItems     []uint64
	Operation        Operation
	Divisor          uint64
	TrueDestination  AgentID
	FalseDestination AgentID
}

// An Agent holds a queue of items, inspects them one by one and decides where
// each of them goes next.
type Agent struct {
	id          AgentID
	name        string
	queue       *ItemQueue
	operation   Operation
	divisor     uint64
	ifTrue      AgentID
	ifFalse     AgentID
	inspections uint64
}

func newAgent(id AgentID, spec AgentSpec) *Agent {
	name := "Agent " + strconv.Itoa(int(id))

	return &Agent{
		id:        id,
		name:      name,
		queue:     NewItemQueue(name+".Queue", spec.InitialItems...),
		operation: spec.Operation,
		divisor:   spec.Divisor,
		ifTrue:    spec.TrueDestination,
		ifFalse:   spec.FalseDestination,
	}
}

// ID returns the index of the agent in its registry.
func (a *Agent) ID() AgentID {
	return a.id
}

// Name returns the name of the agent.
func (a *Agent) Name() string {
	return a.name
}

// Operation returns the transform the agent applies.
func (a *Agent) Operation() Operation {
	return a.operation
}

// Divisor returns the divisor of the agent's routing test.
func (a *Agent) Divisor() uint64 {
	return a.divisor
}

// Destinations returns where items go when the test passes and fails.
func (a *Agent) Destinations() (ifTrue, ifFalse AgentID) {
	return a.ifTrue, a.ifFalse
}

// Queue returns the agent's item queue.
func (a *Agent) Queue() *ItemQueue {
	return a.queue
}

// QueueLen returns the number of items the agent currently holds.
func (a *Agent) QueueLen() int {
	return a.queue.Size()
}

// Items returns a copy of the items the agent holds, head first.
func (a *Agent) Items() []uint64 {
	return a.queue.Items()
}

// Inspections returns how many items the agent has inspected so far.
func (a *Agent) Inspections() uint64 {
	return a.inspections
}

// InspectNext removes the head item from the queue. It returns false when
// the queue is empty.
func (a *Agent) InspectNext() (uint64, bool) {
	return a.queue.Pop()
}

// RecordInspection counts one inspected item.
func (a *Agent) RecordInspection() {
	a.inspections++
}

// Route returns the destination for an item that has already been
// transformed and relieved.
func (a *Agent) Route(item uint64) AgentID {
	if item%a.divisor == 0 {
		return a.ifTrue
	}

	return a.ifFalse
}

// Receive appends an item thrown by another agent, or by this agent itself.
func (a *Agent) Receive(item uint64) {
	a.queue.Push(item)
}
