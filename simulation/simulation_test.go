package simulation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sarchlab/keepaway/datarecording"
	"github.com/sarchlab/keepaway/sim"
	"github.com/sarchlab/keepaway/tracing"
)

func exampleSpecs() []sim.AgentSpec {
	return []sim.AgentSpec{
		{
			InitialItems:     []uint64{79, 98},
			Operation:        sim.Multiply(19),
			Divisor:          23,
			TrueDestination:  2,
			FalseDestination: 3,
		},
		{
			InitialItems:     []uint64{54, 65, 75, 74},
			Operation:        sim.Add(6),
			Divisor:          19,
			TrueDestination:  2,
			FalseDestination: 0,
		},
		{
			InitialItems:     []uint64{79, 60, 97},
			Operation:        sim.Square(),
			Divisor:          13,
			TrueDestination:  1,
			FalseDestination: 3,
		},
		{
			InitialItems:     []uint64{74},
			Operation:        sim.Add(3),
			Divisor:          17,
			TrueDestination:  0,
			FalseDestination: 1,
		},
	}
}

func partTwo() sim.RunConfig {
	return sim.RunConfig{
		TotalRounds: 10000,
		Relief:      sim.ModuloRelief,
		Modulus:     sim.LCMModulus,
	}
}

var _ = Describe("Simulation", func() {
	var s *Simulation

	AfterEach(func() {
		if s != nil {
			Expect(s.Terminate()).To(Succeed())
			s = nil
		}
	})

	It("should run the default configuration", func() {
		var err error
		s, err = MakeBuilder().Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.Monitor()).To(BeNil())
		Expect(s.DataRecorder()).To(BeNil())

		result, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Rounds).To(Equal(20))
		Expect(result.InspectionCounts).To(Equal([]uint64{101, 95, 7, 105}))
		Expect(result.Score).To(Equal(uint64(10605)))
	})

	It("should run the long configuration", func() {
		var err error
		s, err = MakeBuilder().
			WithConfig(partTwo()).
			WithConservationCheck().
			Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())

		result, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Score).To(Equal(uint64(2713310158)))
		Expect(result.Modulus).To(Equal(uint64(96577)))
	})

	It("should count routes", func() {
		var err error
		s, err = MakeBuilder().Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Routing().Total()).To(Equal(uint64(308)))
	})

	It("should only run once", func() {
		var err error
		s, err = MakeBuilder().Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).To(MatchError(ErrAlreadyRun))
	})

	It("should invoke extra hooks", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		hook := NewMockHook(mockCtrl)

		rounds := 0
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx sim.HookCtx) {
				if ctx.Pos == sim.HookPosAfterRound {
					rounds++
				}
			}).
			MinTimes(1)

		var err error
		s, err = MakeBuilder().WithHook(hook).Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(rounds).To(Equal(20))
	})

	It("should log the result", func() {
		core, logs := observer.New(zapcore.InfoLevel)

		var err error
		s, err = MakeBuilder().
			WithLogger(zap.New(core)).
			Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		done := logs.FilterMessage("simulation completed").All()
		Expect(done).To(HaveLen(1))
		Expect(done[0].ContextMap()).To(HaveKeyWithValue("score", uint64(10605)))
		Expect(done[0].ContextMap()).To(HaveKeyWithValue("run", s.ID()))
	})

	It("should surface overflow", func() {
		specs := []sim.AgentSpec{{
			InitialItems:     []uint64{1 << 40},
			Operation:        sim.Square(),
			Divisor:          2,
			TrueDestination:  0,
			FalseDestination: 0,
		}}

		var err error
		s, err = MakeBuilder().
			WithConfig(sim.RunConfig{TotalRounds: 1, Relief: sim.DivideRelief}).
			Build(specs)
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()

		var overflow *sim.OverflowError
		Expect(errors.As(err, &overflow)).To(BeTrue())
		Expect(overflow.Round).To(Equal(1))
	})
})

var _ = Describe("Builder", func() {
	It("should reject invalid agents", func() {
		specs := exampleSpecs()
		specs[2].Divisor = 0

		_, err := MakeBuilder().Build(specs)

		var cfgErr *sim.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Agent).To(Equal(2))
	})

	It("should reject no agents", func() {
		_, err := MakeBuilder().Build(nil)

		Expect(errors.Is(err, sim.ErrNoAgents)).To(BeTrue())
	})

	It("should reject a negative sampling interval", func() {
		_, err := MakeBuilder().WithRecordEvery(-1).Build(exampleSpecs())

		Expect(err).To(HaveOccurred())
	})

	It("should reject an invalid monitor port", func() {
		_, err := MakeBuilder().WithMonitor(70000).Build(exampleSpecs())

		Expect(err).To(HaveOccurred())
	})

	It("should not share hooks between copies", func() {
		base := MakeBuilder()
		a := base.WithHook(sim.HookFunc(func(sim.HookCtx) {}))
		b := base.WithHook(sim.HookFunc(func(sim.HookCtx) {}))

		Expect(base.hooks).To(BeEmpty())
		Expect(a.hooks).To(HaveLen(1))
		Expect(b.hooks).To(HaveLen(1))
	})
})

var _ = Describe("Recording", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should write the run to SQLite", func() {
		path := filepath.Join(dir, "run")

		s, err := MakeBuilder().
			WithRecordPath(path).
			WithRecordEvery(5).
			Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.RecordFile()).To(Equal(path + ".sqlite3"))

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Terminate()).To(Succeed())

		reader, err := datarecording.NewReader(s.RecordFile())
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.AgentRoundTable, tracing.AgentRoundEntry{})
		reader.MapTable(tracing.RunSummaryTable, tracing.RunSummaryEntry{})

		_, total, err := reader.Query(context.Background(),
			tracing.AgentRoundTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(4 * 4))

		summary, _, err := reader.Query(context.Background(),
			tracing.RunSummaryTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(HaveLen(1))

		entry := summary[0].(*tracing.RunSummaryEntry)
		Expect(entry.RunID).To(Equal(s.ID()))
		Expect(entry.Score).To(Equal(uint64(10605)))
	})

	It("should not overwrite an existing file", func() {
		path := filepath.Join(dir, "taken")
		Expect(os.WriteFile(path+".sqlite3", nil, 0o644)).To(Succeed())

		_, err := MakeBuilder().WithRecordPath(path).Build(exampleSpecs())

		Expect(err).To(MatchError(ContainSubstring("already exists")))
	})

	It("should not create a file for invalid agents", func() {
		path := filepath.Join(dir, "invalid")

		_, err := MakeBuilder().WithRecordPath(path).Build(nil)
		Expect(err).To(HaveOccurred())

		_, err = os.Stat(path + ".sqlite3")
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})

var _ = Describe("Monitoring", func() {
	It("should serve the final round until terminated", func() {
		s, err := MakeBuilder().WithMonitor(0).Build(exampleSpecs())
		Expect(err).NotTo(HaveOccurred())

		url := s.Monitor().URL()
		Expect(url).To(HavePrefix("http://"))

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Get(url + "/api/round")
		Expect(err).NotTo(HaveOccurred())
		body, _ := io.ReadAll(rsp.Body)
		rsp.Body.Close()
		Expect(string(body)).To(MatchJSON(`{"round":20}`))

		Expect(s.Terminate()).To(Succeed())

		_, err = http.Get(url + "/api/round")
		Expect(err).To(HaveOccurred())
	})
})
