package results

import "giveaway-grid/models"

// State is the UI-visible state of a results target
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePopulated
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// View is a render target owned by a Controller.
// Every call fully replaces what the target shows.
type View interface {
	ShowLoading()
	ShowItems(items []models.DisplayItem)
	ShowEmpty()
	ShowError(message string)
}
