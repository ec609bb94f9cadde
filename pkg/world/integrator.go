// pkg/world/integrator.go
package world

// Integrator advances a world by one sub-step of length w.DT
type Integrator interface {
	Solve(w *World)
}

// Euler is the semi-implicit Euler integrator: constraints update the
// velocities, which then move the positions.
type Euler struct{}

// Solve implements Integrator
func (Euler) Solve(w *World) {
	w.Step()
	for i := range w.nodes {
		n := &w.nodes[i]
		n.P = n.P.Add(n.V.Scale(w.DT))
	}
}

// Update advances the world by dt split into substeps sub-steps and
// refreshes Energy. A zero dt leaves the world and Energy untouched, which
// is how the simulation is paused.
func (w *World) Update(integrator Integrator, dt float32, substeps int) {
	if substeps < 1 {
		substeps = 1
	}
	w.DT = dt / float32(substeps)
	if dt == 0 {
		return
	}

	for range substeps {
		integrator.Solve(w)
	}

	w.Energy = 0
	for _, n := range w.nodes {
		w.Energy += n.KineticEnergy()
	}
}
