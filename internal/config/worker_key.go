package config

type WorkerKeyStruct struct {
	PersistEventsQueue   string
	PersistAttemptsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistEventsQueue:   "persist_events_queue",
	PersistAttemptsQueue: "persist_attempts_queue",
}
