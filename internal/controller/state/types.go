package state

// UserState is where a chat is in the makeup dialog
type UserState string

const (
	StateNone UserState = "" // not linked to a faculty account

	StateLinked    UserState = "linked"    // p_id verified, no slot data yet
	StateExploring UserState = "exploring" // slot data loaded, free text goes to the assistant
)

// Data keys
const (
	KeyPID           = "p_id"
	KeyName          = "registered_name"
	KeyCourses       = "courses"
	KeyTargetDay     = "target_day"
	KeyCourseIndex   = "course_index"
	KeyFreeSlotsInfo = "free_slots_info"
)

// UserData holds a chat's dialog state and its scratch values
type UserData struct {
	State UserState
	Data  map[string]interface{}
}
