package metrics

import "github.com/GoSim-25-26J-441/swarm-core/internal/pso"

// Tee fans solver notifications out to every non-nil observer in order
func Tee(observers ...pso.Observer) pso.Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []pso.Observer

func (m multiObserver) RoundCompleted(round int, best float64) {
	for _, o := range m {
		o.RoundCompleted(round, best)
	}
}

func (m multiObserver) SolveCompleted(res pso.Result) {
	for _, o := range m {
		o.SolveCompleted(res)
	}
}
