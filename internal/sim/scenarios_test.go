package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/diagnose"
	"github.com/san-kum/knotsim/internal/geom"
	"github.com/san-kum/knotsim/internal/sim"
)

// arc lays n elements on a circle with unit-diameter chords so that the
// two ends sit span apart.
func arc(n int, span float64) chain.Positions {
	chord := func(r float64) float64 {
		theta := 2 * math.Asin(1/r)
		return 2 * r * math.Sin(float64(n-1)*theta/2)
	}
	lo := 1 / math.Sin(math.Pi/float64(n-1))
	hi := 1 / math.Sin(math.Pi/float64(2*(n-1)))
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if chord(mid) < span {
			lo = mid
		} else {
			hi = mid
		}
	}
	theta := 2 * math.Asin(1/lo)
	p := make(chain.Positions, n)
	for i := range p {
		a := float64(i) * theta
		p[i] = geom.Vec3{lo * math.Cos(a), lo * math.Sin(a), 0}
	}
	return p
}

func hasPair(pairs []chain.Pair, i, j int) bool {
	for _, pr := range pairs {
		if (pr.I == i && pr.J == j) || (pr.I == j && pr.J == i) {
			return true
		}
	}
	return false
}

var _ = Describe("Session", func() {
	var s *sim.Session

	Context("with a straight chain of 11 at exact spacing", func() {
		BeforeEach(func() {
			s = sim.NewSession(chain.Line(11, chain.Diameter), chain.DefaultParams(), sim.DefaultSchedule())
		})

		It("reports no findings", func() {
			Expect(s.Findings()).To(BeEmpty())
			Expect(s.Report()).To(BeEmpty())
		})

		It("does not move when settled", func() {
			before := s.Positions()
			Expect(s.Settle(20)).To(Succeed())
			for i, v := range s.Positions() {
				Expect(geom.Dist(v, before[i])).To(BeNumerically("<", 1e-9))
			}
		})

		Context("when element 5 is displaced onto element 0", func() {
			BeforeEach(func() {
				p := s.Positions()
				p[5] = geom.Vec3{0, 0.5, 0}
				_, err := s.SetPositions(p)
				Expect(err).NotTo(HaveOccurred())
				s.Release()
			})

			It("flags the overlap before settling", func() {
				Expect(diagnose.Strings(s.Findings())).To(ContainElement("Overlap error: balls 0-5 dist=0.500"))
			})

			It("separates the pair and restores tangency within 40 frames", func() {
				for i := 0; i < 40; i++ {
					Expect(s.Advance()).To(Succeed())
				}
				d := s.Distances([]int{0, 5})
				Expect(d).To(HaveLen(1))
				Expect(d[0].D).To(BeNumerically(">=", chain.Diameter-chain.Tolerance))
				Expect(s.Findings()).To(BeEmpty())
			})
		})
	})

	Context("closing an open arc whose ends are 6 apart", func() {
		BeforeEach(func() {
			s = sim.NewSession(arc(11, 6), chain.DefaultParams(), sim.DefaultSchedule())
		})

		It("starts open and clean", func() {
			Expect(s.Distances([]int{0, 10})[0].D).To(BeNumerically("~", 6, 1e-6))
			Expect(s.Findings()).To(BeEmpty())
		})

		It("pulls the ends into contact", func() {
			Expect(s.SetClosed(true)).To(Succeed())
			Expect(s.Distances([]int{0, 10})[0].D).To(BeNumerically("~", chain.Diameter, chain.Tolerance))
			Expect(s.Findings()).To(BeEmpty())

			for i := 0; i < 60; i++ {
				Expect(s.Advance()).To(Succeed())
			}
			Expect(s.Distances([]int{0, 10})[0].D).To(BeNumerically("~", chain.Diameter, chain.Tolerance))
			Expect(s.Findings()).To(BeEmpty())
		})

		It("treats the wrap pair as a neighbor once closed", func() {
			Expect(hasPair(chain.NonNeighborPairs(11, false), 0, 10)).To(BeTrue())
			Expect(hasPair(chain.NonNeighborPairs(11, true), 0, 10)).To(BeFalse())
			Expect(hasPair(chain.NeighborPairs(11, true), 0, 10)).To(BeTrue())
		})
	})

	Context("with a closed chain of three", func() {
		It("has no pair the overlap resolver can act on", func() {
			Expect(chain.NonNeighborPairs(3, true)).To(BeEmpty())
			Expect(chain.SegmentPairs(3, true)).To(BeEmpty())
		})

		It("never reports overlap even at the largest ratio", func() {
			h := math.Sqrt(3)
			p := chain.Positions{{0, 0, 0}, {2, 0, 0}, {1, h, 0}}
			params := chain.Params{Diameter: chain.Diameter, Closed: true, Mode: chain.Spheres{Ratio: chain.MaxRatio}}
			session := sim.NewSession(p, params, sim.DefaultSchedule())
			for i := 0; i < 10; i++ {
				Expect(session.Advance()).To(Succeed())
			}
			Expect(session.Findings()).To(BeEmpty())
		})
	})

	DescribeTable("clamps parameters at the point of mutation",
		func(apply func(*sim.Session) float64, want float64) {
			session := sim.NewSession(chain.Line(11, chain.Diameter), chain.DefaultParams(), sim.DefaultSchedule())
			Expect(apply(session)).To(Equal(want))
		},
		Entry("ratio above range", func(s *sim.Session) float64 { return s.SetRatio(2.0) }, 1.2),
		Entry("ratio below range", func(s *sim.Session) float64 { return s.SetRatio(0.1) }, 0.8),
		Entry("count below range", func(s *sim.Session) float64 { return float64(s.SetCount(1)) }, 2.0),
		Entry("count above range", func(s *sim.Session) float64 { return float64(s.SetCount(1000)) }, 60.0),
		Entry("stick radius above range", func(s *sim.Session) float64 { return s.SetStickRadius(1) }, 0.6),
	)

	Describe("preset loading", func() {
		It("settles every catalog preset without NaN", func() {
			session := sim.NewSession(chain.Line(11, chain.Diameter), chain.DefaultParams(), sim.DefaultSchedule())
			for _, name := range []string{"default11", "trefoil11", "figure8_16", "double_overhand_18", "stevedore_22", "knot_9_29"} {
				Expect(session.LoadPreset(name)).To(Succeed(), name)
				Expect(session.Positions().IsValid()).To(BeTrue(), name)
			}
		})
	})
})
