package command

// MessageOf returns the user-facing message carried by a command, if any.
func MessageOf(c Command) string {
	switch v := c.(type) {
	case UpdateChart:
		return v.Message
	case UpdateAllCharts:
		return v.Message
	case AddChart:
		return v.Message
	case DeleteChart:
		return v.Message
	case AddPage:
		return v.Message
	case UpdatePage:
		return v.Message
	case DeletePage:
		return v.Message
	case UpdateTheme:
		return v.Message
	case AddFilter:
		return v.Message
	case FilterData:
		return v.Message
	case SortData:
		return v.Message
	case Reject:
		return v.Message
	default:
		return ""
	}
}
