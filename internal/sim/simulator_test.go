package sim

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/process"
)

func tankScenario() config.Config {
	cfg := config.DefaultTank()
	cfg.HInit, cfg.HDest = 0, 5
	cfg.Kp, cfg.Ti, cfg.Td, cfg.Tp = 10, 1, 0, 1
	cfg.A, cfg.Beta = 1, 0.035
	cfg.UMin, cfg.UMax = 0, 10
	cfg.QdMin, cfg.QdMax = 0, 10
	cfg.T = 1
	cfg.SaveTolerance = 0.01
	return cfg
}

func turbineScenario() config.Config {
	cfg := config.DefaultTurbine()
	cfg.Kp = 0
	cfg.Tp = 1
	cfg.T = 1
	cfg.G, cfg.L, cfg.Ro = 10, 10, 1000
	cfg.SaveTolerance = 0.01
	return cfg
}

// literalTank and literalTurbine are the reference scenarios with their
// published inputs.
func literalTank() config.Config {
	cfg := config.DefaultTank()
	cfg.HInit, cfg.HDest = 0, 5
	cfg.Kp, cfg.Ti, cfg.Td, cfg.Tp = 1, 1, 0, 1
	cfg.A, cfg.Beta = 1, 0
	cfg.UMin, cfg.UMax = 0, 10
	cfg.QdMin, cfg.QdMax = 0, 10
	cfg.T = 3
	return cfg
}

func literalTurbine() config.Config {
	cfg := config.DefaultTurbine()
	cfg.G, cfg.L, cfg.Ro, cfg.EtaT = 10, 10, 1000, 0.9
	cfg.A, cfg.K, cfg.Beta = 0, 0, 0
	cfg.PDest = 100
	cfg.Kp, cfg.Ti, cfg.Td, cfg.Tp = 0, 1, 0, 0.1
	cfg.T = 1
	return cfg
}

func engineFor(cfg config.Config) *Engine {
	model, err := process.New(cfg, process.NewCoefficients(cfg))
	Expect(err).NotTo(HaveOccurred())
	e, err := New(model, cfg)
	Expect(err).NotTo(HaveOccurred())
	return e
}

type countMetric struct {
	n      int
	resets int
}

func (c *countMetric) Name() string       { return "count" }
func (c *countMetric) Observe(rec Record) { c.n++ }
func (c *countMetric) Value() float64     { return float64(c.n) }

func (c *countMetric) Reset() {
	c.n = 0
	c.resets++
}

var _ = Describe("Engine", func() {
	Context("tank scenario", func() {
		It("saturates the first step and fills the tank", func() {
			res, err := engineFor(tankScenario()).Run()
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Records).To(HaveLen(2))
			rec := res.Records[1]
			Expect(rec.T).To(Equal(1.0))
			Expect(rec.E).To(Equal(5.0))
			Expect(rec.U).To(Equal(10.0))
			Expect(rec.X[process.TankQd]).To(Equal(10.0))
			Expect(rec.X[process.TankQo]).To(Equal(0.0))
			Expect(rec.X[process.TankH]).To(Equal(10.0))
			Expect(res.Saturated).To(Equal(1))
		})

		It("starts from the initial level with zero error and control", func() {
			cfg := tankScenario()
			cfg.HInit = 0.7
			res, err := engineFor(cfg).Run()
			Expect(err).NotTo(HaveOccurred())

			first := res.Records[0]
			Expect(first.Step).To(Equal(0))
			Expect(first.T).To(Equal(0.0))
			Expect(first.E).To(Equal(0.0))
			Expect(first.U).To(Equal(0.0))
			Expect(first.X).To(Equal(process.State{0, 0, 0.7}))
		})

		It("holds the level when there is no gain and no outflow", func() {
			cfg := tankScenario()
			cfg.Kp = 0
			cfg.HInit = 0
			cfg.T = 20

			res, err := engineFor(cfg).Run()
			Expect(err).NotTo(HaveOccurred())
			for _, rec := range res.Records[1:] {
				Expect(rec.U).To(Equal(0.0))
				Expect(rec.X[process.TankH]).To(Equal(0.0))
			}
		})
	})

	Context("reference scenarios", func() {
		It("fills the tank in one saturated step and holds it", func() {
			res, err := engineFor(literalTank()).Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Records).To(HaveLen(4))

			type step struct{ e, u, qd, qo, h float64 }
			expected := []step{
				{0, 0, 0, 0, 0},
				{5, 10, 10, 0, 10},
				{-5, 0, 0, 0, 10},
				{-5, 0, 0, 0, 10},
			}
			for k, rec := range res.Records {
				Expect(rec.E).To(Equal(expected[k].e), "e at step %d", k)
				Expect(rec.U).To(Equal(expected[k].u), "u at step %d", k)
				Expect(rec.X[process.TankQd]).To(Equal(expected[k].qd), "Qd at step %d", k)
				Expect(rec.X[process.TankQo]).To(Equal(expected[k].qo), "Qo at step %d", k)
				Expect(rec.X[process.TankH]).To(Equal(expected[k].h), "h at step %d", k)
			}
		})

		It("keeps the static head and zero power at every step of a closed turbine", func() {
			res, err := engineFor(literalTurbine()).Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(10))

			for _, rec := range res.Records[1:] {
				Expect(rec.X[process.TurbineS]).To(Equal(0.0), "S at step %d", rec.Step)
				Expect(rec.X[process.TurbineQ]).To(Equal(0.0), "Q at step %d", rec.Step)
				Expect(rec.X[process.TurbineHLoss]).To(Equal(0.0), "H_loss at step %d", rec.Step)
				Expect(rec.X[process.TurbineDeltaH]).To(Equal(0.0), "delta_H at step %d", rec.Step)
				Expect(rec.X[process.TurbineH]).To(Equal(100000.0), "H at step %d", rec.Step)
				Expect(rec.X[process.TurbineP]).To(Equal(0.0), "P at step %d", rec.Step)
			}
		})
	})

	Context("turbine scenario", func() {
		It("keeps the static head with a closed valve", func() {
			res, err := engineFor(turbineScenario()).Run()
			Expect(err).NotTo(HaveOccurred())

			x := res.Final().X
			Expect(x[process.TurbineS]).To(Equal(0.0))
			Expect(x[process.TurbineQ]).To(Equal(0.0))
			Expect(x[process.TurbineDeltaH]).To(Equal(0.0))
			Expect(x[process.TurbineH]).To(Equal(100000.0))
			Expect(x[process.TurbineP]).To(Equal(0.0))
		})

		It("starts from the initial power", func() {
			cfg := turbineScenario()
			cfg.PInit = 42
			res, err := engineFor(cfg).Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Records[0].X[process.TurbineP]).To(Equal(42.0))
			Expect(res.Records[1].E).To(Equal(cfg.PDest - 42))
		})
	})

	It("keeps every control output inside the clamp range", func() {
		for _, cfg := range []config.Config{config.DefaultTank(), config.DefaultTurbine()} {
			cfg.T = 50
			res, err := engineFor(cfg).Run()
			Expect(err).NotTo(HaveOccurred())
			for _, rec := range res.Records {
				Expect(rec.U).To(BeNumerically(">=", cfg.UMin))
				Expect(rec.U).To(BeNumerically("<=", cfg.UMax))
			}
		}
	})

	It("produces one record per step plus the initial record", func() {
		cfg := config.DefaultTank()
		cfg.T, cfg.Tp = 10, 0.1
		e := engineFor(cfg)
		res, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(e.Steps()))
		Expect(res.Records).To(HaveLen(StepCount(cfg) + 1))
	})

	It("accepts a degenerate control range", func() {
		cfg := tankScenario()
		cfg.UMin, cfg.UMax = 3, 3
		res, err := engineFor(cfg).Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final().U).To(Equal(3.0))
		Expect(res.Final().X[process.TankQd]).To(Equal(0.0))
	})

	It("moves through its phases once", func() {
		e := engineFor(tankScenario())
		Expect(e.Phase()).To(Equal(Initializing))

		_, err := e.Result()
		Expect(err).To(MatchError(ErrNotRun))

		first, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Phase()).To(Equal(Terminated))

		second, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(BeIdenticalTo(first))
	})

	It("feeds every step to attached metrics", func() {
		cfg := tankScenario()
		cfg.T = 5
		m := &countMetric{}
		e := engineFor(cfg)
		e.AddMetric(m)

		res, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.resets).To(Equal(1))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 5.0))
	})

	It("rejects invalid configurations before running", func() {
		cfg := tankScenario()
		cfg.Tp = 0
		model, err := process.New(cfg, process.NewCoefficients(cfg))
		Expect(err).NotTo(HaveOccurred())

		_, err = New(model, cfg)
		var cfgErr *config.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("tp"))
		Expect(err).To(MatchError(config.ErrInvalidConfig))
	})

	It("rejects a nil model", func() {
		_, err := New(nil, tankScenario())
		Expect(err).To(MatchError(ErrNilModel))
	})
})

var _ = Describe("StepCount", func() {
	DescribeTable("termination policy",
		func(t, tp float64, limit, expected int) {
			cfg := config.DefaultTank()
			cfg.T, cfg.Tp, cfg.IterationLimit = t, tp, limit
			Expect(StepCount(cfg)).To(Equal(expected))
		},
		Entry("duration over period", 10.0, 0.5, 0, 20),
		Entry("truncates a partial step", 1.0, 0.3, 0, 3),
		Entry("duration shorter than a step", 0.05, 0.1, 0, 1),
		Entry("zero duration uses the default limit", 0.0, 0.1, 0, DefaultIterationLimit),
		Entry("limit caps the duration", 10.0, 0.1, 7, 7),
		Entry("limit above the duration", 1.0, 0.5, 100, 2),
		Entry("limit caps the default", 0.0, 0.1, 1, 1),
	)
})

var _ = Describe("Simulate", func() {
	It("returns a decimated table led by the initial row", func() {
		cfg := config.DefaultTank()
		cfg.T = 200
		cfg.SaveTolerance = 0.01

		tbl, res, err := Simulate(cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(tbl.Columns).To(Equal([]string{"t", "e", "u", "Qd", "Qo", "h"}))
		Expect(tbl.Len()).To(BeNumerically(">=", 2))
		Expect(tbl.Len()).To(BeNumerically("<=", len(res.Records)+1))
		Expect(tbl.Rows[0]).To(Equal([]float64{0, 0, 0, 0, 0, cfg.HInit}))
	})

	It("keeps the full series consistent with the records", func() {
		_, res, err := Simulate(tankScenario())
		Expect(err).NotTo(HaveOccurred())

		full := res.Full()
		Expect(full.Len()).To(Equal(len(res.Records)))
		Expect(full.Column("h")).To(Equal([]float64{0, 10}))
		Expect(full.Column("t")).To(Equal([]float64{0, 1}))
	})

	It("reports unknown processes", func() {
		cfg := tankScenario()
		cfg.Process = "boiler"
		_, _, err := Simulate(cfg)
		Expect(err).To(MatchError(config.ErrUnknownProcess))
	})

	It("records divergence without failing", func() {
		cfg := turbineScenario()
		cfg.Kp = 1
		cfg.L = math.MaxFloat64
		cfg.T = 3
		_, res, err := Simulate(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.DivergedAt).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Batch", func() {
	It("returns outputs in configuration order", func() {
		tank := tankScenario()
		turbine := turbineScenario()

		outs, err := Batch(context.Background(), []config.Config{tank, turbine, tank}, 2, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(outs).To(HaveLen(3))
		Expect(outs[0].Result.Process).To(Equal(config.ProcessTank))
		Expect(outs[1].Result.Process).To(Equal(config.ProcessTurbine))
		Expect(outs[2].Table.Rows).To(Equal(outs[0].Table.Rows))
	})

	It("builds fresh metrics for every run", func() {
		cfg := tankScenario()
		cfg.T = 4
		set := func(config.Config) []Metric { return []Metric{&countMetric{}} }

		outs, err := Batch(context.Background(), []config.Config{cfg, cfg}, 0, set)
		Expect(err).NotTo(HaveOccurred())
		for _, o := range outs {
			Expect(o.Result.Metrics["count"]).To(Equal(4.0))
		}
	})

	It("names the failing configuration", func() {
		bad := tankScenario()
		bad.SaveTolerance = 0

		_, err := Batch(context.Background(), []config.Config{tankScenario(), bad}, 1, nil)
		var batchErr *BatchError
		Expect(errors.As(err, &batchErr)).To(BeTrue())
		Expect(batchErr.Index).To(Equal(1))
		Expect(err).To(MatchError(config.ErrInvalidConfig))
	})

	It("drops the undecimated series but keeps the final record", func() {
		cfg := config.DefaultTank()
		cfg.T = 100

		outs, err := Batch(context.Background(), []config.Config{cfg}, 1, nil)
		Expect(err).NotTo(HaveOccurred())

		res := outs[0].Result
		Expect(res.Records).To(BeNil())
		Expect(res.Full().Len()).To(Equal(0))
		Expect(res.Final().Step).To(Equal(StepCount(cfg)))

		_, single, err := Simulate(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(single.Records).To(HaveLen(StepCount(cfg) + 1))
		Expect(res.Final()).To(Equal(single.Final()))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Batch(ctx, []config.Config{tankScenario()}, 1, nil)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Result", func() {
	It("looks up columns of a record", func() {
		_, res, err := Simulate(tankScenario())
		Expect(err).NotTo(HaveOccurred())

		final := res.Final()
		for column, expected := range map[string]float64{"t": 1, "e": 5, "u": 10, "Qd": 10, "h": 10} {
			v, ok := res.Value(final, column)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(expected), column)
		}

		_, ok := res.Value(final, "P")
		Expect(ok).To(BeFalse())
		Expect(res.Controlled).To(Equal("h"))
	})
})
