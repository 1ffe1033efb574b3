package tracing

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/keepaway/datarecording"
	"github.com/sarchlab/keepaway/sim"
)

var _ = Describe("RoundRecorder", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		inserted map[string][]any
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
		inserted = make(map[string][]any)

		backend.EXPECT().CreateTable(AgentRoundTable, AgentRoundEntry{})
		backend.EXPECT().CreateTable(RunSummaryTable, RunSummaryEntry{})
		backend.EXPECT().
			InsertData(gomock.Any(), gomock.Any()).
			Do(func(table string, entry any) {
				inserted[table] = append(inserted[table], entry)
			}).
			AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record every agent after every round", func() {
		backend.EXPECT().Flush()

		s := exampleScheduler(partOne())
		r := NewRoundRecorder("run", backend, 0)
		s.AcceptHook(r)
		s.RegisterSimulationEndHandler(r)

		Expect(s.Run(2)).To(Succeed())

		Expect(inserted[AgentRoundTable]).To(HaveLen(8))
		Expect(inserted[AgentRoundTable][0]).To(Equal(AgentRoundEntry{
			RunID:       "run",
			Round:       1,
			Agent:       0,
			Inspections: 2,
			QueueLen:    4,
		}))
		Expect(inserted[AgentRoundTable][7].(AgentRoundEntry).Round).
			To(Equal(2))
	})

	It("should sample rounds and always record the last one", func() {
		backend.EXPECT().Flush()

		s := exampleScheduler(partOne())
		r := NewRoundRecorder("run", backend, 2)
		s.AcceptHook(r)
		s.RegisterSimulationEndHandler(r)

		Expect(s.Run(5)).To(Succeed())

		var rounds []int
		for _, e := range inserted[AgentRoundTable] {
			entry := e.(AgentRoundEntry)
			if entry.Agent == 0 {
				rounds = append(rounds, entry.Round)
			}
		}

		Expect(rounds).To(Equal([]int{2, 4, 5}))
	})

	It("should write the summary on simulation end", func() {
		backend.EXPECT().Flush()

		s := exampleScheduler(partOne())
		r := NewRoundRecorder("abc", backend, 20)
		s.AcceptHook(r)
		s.RegisterSimulationEndHandler(r)

		Expect(s.Run(20)).To(Succeed())

		Expect(inserted[RunSummaryTable]).To(ConsistOf(RunSummaryEntry{
			RunID:      "abc",
			Rounds:     20,
			Agents:     4,
			TotalItems: 10,
			Score:      10605,
		}))
		Expect(inserted[AgentRoundTable]).To(HaveLen(4))
	})

	It("should ignore other hook positions", func() {
		r := NewRoundRecorder("run", backend, 1)

		r.Func(sim.HookCtx{Pos: sim.HookPosBeforeRound, Item: 1})

		Expect(inserted).To(BeEmpty())
	})
})

var _ = Describe("RoundRecorder with SQLite", func() {
	It("should be readable after the run", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		backend, err := datarecording.New(path)
		Expect(err).NotTo(HaveOccurred())

		s := exampleScheduler(partOne())
		r := NewRoundRecorder("sqlite", backend, 1)
		s.AcceptHook(r)
		s.RegisterSimulationEndHandler(r)

		Expect(s.Run(20)).To(Succeed())
		Expect(backend.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(AgentRoundTable, AgentRoundEntry{})
		reader.MapTable(RunSummaryTable, RunSummaryEntry{})

		results, total, err := reader.Query(context.Background(),
			AgentRoundTable, datarecording.QueryParams{
				Where:   "Round = ?",
				Args:    []any{20},
				OrderBy: "Agent",
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(4))

		var counts []uint64
		for _, e := range results {
			counts = append(counts, e.(*AgentRoundEntry).Inspections)
		}

		Expect(counts).To(Equal([]uint64{101, 95, 7, 105}))

		summary, _, err := reader.Query(context.Background(),
			RunSummaryTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(HaveLen(1))
		Expect(summary[0].(*RunSummaryEntry).Score).To(Equal(uint64(10605)))
	})

	It("should read runs back through a RoundReader", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		backend, err := datarecording.New(path)
		Expect(err).NotTo(HaveOccurred())

		s := exampleScheduler(partOne())
		r := NewRoundRecorder("sampled", backend, 3)
		s.AcceptHook(r)
		s.RegisterSimulationEndHandler(r)

		Expect(s.Run(20)).To(Succeed())
		Expect(backend.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		rr := NewRoundReader(reader)
		ctx := context.Background()

		runs, err := rr.Runs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(Equal([]RunSummaryEntry{{
			RunID: "sampled", Rounds: 20, Agents: 4, TotalItems: 10,
			Score: 10605,
		}}))

		last, err := rr.LastRound(ctx, "sampled")
		Expect(err).NotTo(HaveOccurred())
		Expect(last).To(Equal(20))

		agents, err := rr.AgentsAt(ctx, "sampled", 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(agents).To(HaveLen(4))
		Expect(agents[3].Agent).To(Equal(3))

		missing, err := rr.LastRound(ctx, "other")
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeZero())
	})
})
