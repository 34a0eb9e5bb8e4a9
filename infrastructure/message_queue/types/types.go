package mq_types

import "time"

type TaskQueueBroker interface {
	Start()
	Enqueue(task QueueTask)
}

type Queues string

// QueueTask is one unit of deferred work. ProcessIn and TimeOut are in
// seconds.
type QueueTask struct {
	Name      Queues
	Payload   []byte
	Priority  TaskPriority
	ProcessIn time.Duration
	TimeOut   time.Duration
	MaxRetry  int
}

type TaskPriority string

const (
	Low    TaskPriority = "low"
	Medium TaskPriority = "medium"
	High   TaskPriority = "high"
)
