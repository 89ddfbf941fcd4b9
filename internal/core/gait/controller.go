package gait

// DefaultErrorThreshold is the summed drift at which the idle group re-plants.
const DefaultErrorThreshold = 12.0

// Controller alternates two movement groups. Every tick it measures how far the
// active group's feet have drifted from their neutral placement and, once that
// exceeds the threshold, hands over to the other group and re-plants its feet.
type Controller struct {
	threshold     float64
	active        Group
	combinedError float64
	flips         uint64
}

// Flip describes what a Step decided.
type Flip struct {
	Flipped bool
	Active  Group
	Error   float64
	// Replanted holds the indices of limbs whose target moved.
	Replanted []int
}

// NewController starts with Group2 active.
func NewController(threshold float64) *Controller {
	return &Controller{
		threshold: threshold,
		active:    Group2,
	}
}

func (c *Controller) Active() Group          { return c.active }
func (c *Controller) CombinedError() float64 { return c.combinedError }
func (c *Controller) Threshold() float64     { return c.threshold }
func (c *Controller) Flips() uint64          { return c.flips }

// UpdateError recomputes the combined error over limbs of the active group.
func (c *Controller) UpdateError(limbs []Limb) float64 {
	total := 0.0
	for _, l := range limbs {
		if l.Leg.Group() != c.active {
			continue
		}
		total += l.Error()
	}
	c.combinedError = total
	return total
}

// RetargetIfNeeded flips the active group when the last computed error exceeds
// the threshold and re-plants every limb of the newly active group.
func (c *Controller) RetargetIfNeeded(limbs []Limb) Flip {
	result := Flip{Active: c.active, Error: c.combinedError}
	if c.combinedError <= c.threshold {
		return result
	}

	c.active = c.active.Other()
	c.flips++
	result.Flipped = true
	result.Active = c.active

	for i, l := range limbs {
		if l.Leg.Group() != c.active {
			continue
		}
		l.Leg.replant(l.Chain.Anchor())
		result.Replanted = append(result.Replanted, i)
	}
	return result
}

// Step runs UpdateError followed by RetargetIfNeeded. Anchors must already be
// moved for this tick.
func (c *Controller) Step(limbs []Limb) Flip {
	c.UpdateError(limbs)
	return c.RetargetIfNeeded(limbs)
}
