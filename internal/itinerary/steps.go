package itinerary

import "github.com/passbi/passbi_planner/internal/models"

// BuildSteps constructs user-friendly step-by-step directions
// Consolidates consecutive RIDE steps on the same route into a single step
func BuildSteps(nodes []models.Node, edges []models.Edge) []models.Step {
	if len(nodes) == 0 || len(edges) == 0 {
		return []models.Step{}
	}

	steps := []models.Step{}
	var currentStep *models.Step

	for i, edge := range edges {
		fromNode := nodes[i]
		toNode := nodes[i+1]

		step := models.Step{
			Type:         edge.Type,
			FromStop:     fromNode.StopID,
			FromStopName: fromNode.StopName,
			ToStop:       toNode.StopID,
			ToStopName:   toNode.StopName,
			Duration:     edge.CostTime,
			Distance:     edge.CostWalk,
		}
		if edge.Type == models.EdgeRide {
			step.Route = fromNode.RouteID
			step.RouteName = fromNode.RouteName
			step.Mode = fromNode.Mode
			step.NumStops = 1 // Each edge represents moving through 1 stop
		}

		// Try to consolidate consecutive RIDE steps on the same route
		if currentStep != nil &&
			currentStep.Type == models.EdgeRide &&
			step.Type == models.EdgeRide &&
			currentStep.Route == step.Route {
			currentStep.Stops = append(currentStep.Stops, models.StopInfo{
				ID:   currentStep.ToStop,
				Name: currentStep.ToStopName,
			})
			currentStep.ToStop = step.ToStop
			currentStep.ToStopName = step.ToStopName
			currentStep.Duration += step.Duration
			currentStep.Distance += step.Distance
			currentStep.NumStops++
		} else {
			if currentStep != nil {
				steps = append(steps, *currentStep)
			}
			currentStep = &step
		}
	}

	if currentStep != nil {
		steps = append(steps, *currentStep)
	}

	return steps
}
