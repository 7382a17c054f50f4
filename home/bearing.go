package home

import "roboone/sensor"

// StrongestBearing returns the turn in degrees (positive is right) that
// points the front of the robot at the strongest detector, to the nearest
// 45 degrees: when a neighbouring detector counted within similarityPercent
// of the strongest one the beacon is taken to be half way between them.
// If nothing was seen at all it returns searchDegrees so the robot looks
// somewhere else.
func StrongestBearing(c sensor.Counts, similarityPercent, searchDegrees int) int {
	// clockwise from the front
	dirs := [4]struct{ count, bearing int }{
		{c.Front, 0},
		{c.Right, 90},
		{c.Back, 180},
		{c.Left, 270},
	}

	best := 0
	for i := range dirs {
		if dirs[i].count > dirs[best].count {
			best = i
		}
	}
	top := dirs[best].count
	if top == 0 {
		return searchDegrees
	}

	floor := top * (100 - similarityPercent) / 100
	next := dirs[(best+1)%len(dirs)].count
	prev := dirs[(best+len(dirs)-1)%len(dirs)].count

	bearing := dirs[best].bearing
	switch {
	case next >= floor && next >= prev:
		bearing += 45
	case prev >= floor:
		bearing -= 45
	}
	if bearing > 180 {
		bearing -= 360
	}
	return bearing
}
