package pilot

// Redis key naming conventions for pilot coordination.
// All keys are prefixed with "scalems:" to avoid collisions.

const keyPrefix = "scalems:"

// submitKey returns the List key the coordinator polls for task
// submissions: scalems:pilot:{session}:submit
func submitKey(session string) string {
	return keyPrefix + "pilot:" + session + ":submit"
}

// doneKey returns the per-task completion List key:
// scalems:pilot:{session}:done:{taskID}. Keeping completion per task is
// what lets Await resolve one task without waiting on the session.
func doneKey(session, taskID string) string {
	return keyPrefix + "pilot:" + session + ":done:" + taskID
}
