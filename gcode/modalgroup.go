package gcode

type ModalGroup byte

const (
	ModalGroupNone ModalGroup = iota
	ModalGroupNonModal
	ModalGroupMotion
	ModalGroupPlaneSelection
	ModalGroupDistanceMode
	ModalGroupFeedRateMode
	ModalGroupSpindleMode
	ModalGroupUnits
	ModalGroupCoordinateSystem
	ModalGroupStopping
	ModalGroupToolChange
	ModalGroupSpindle
	ModalGroupCoolant
	ModalGroupTapping
	ModalGroupFeedRate
	ModalGroupSpeed
)

// ModalGroup returns the group a word belongs to. Only one word of a
// group may appear in a block.
func (w Word) ModalGroup() ModalGroup {
	switch w.W {
	case 'F':
		return ModalGroupFeedRate
	case 'S':
		return ModalGroupSpeed
	case 'G', 'M':
	default:
		return ModalGroupNone
	}

	v, ok := w.Number()
	if !ok {
		return ModalGroupNone
	}
	if w.W == 'G' {
		switch v {
		case 4, 9, 53, 74, 75:
			return ModalGroupNonModal
		case 0, 1, 2, 3, 33:
			return ModalGroupMotion
		case 17, 18, 19:
			return ModalGroupPlaneSelection
		case 90, 91:
			return ModalGroupDistanceMode
		case 93, 94, 95:
			return ModalGroupFeedRateMode
		case 96, 97:
			return ModalGroupSpindleMode
		case 70, 71, 700, 710:
			return ModalGroupUnits
		case 500, 54, 55, 56, 57:
			return ModalGroupCoordinateSystem
		}
		return ModalGroupNone
	}

	switch v {
	case 0, 1, 2, 17, 30:
		return ModalGroupStopping
	case 6:
		return ModalGroupToolChange
	case 3, 4, 5:
		return ModalGroupSpindle
	case 7, 8, 9:
		return ModalGroupCoolant
	case 29:
		return ModalGroupTapping
	}
	return ModalGroupNone
}
