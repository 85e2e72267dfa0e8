// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package intercept_test

import (
	"context"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/samber/oops"

	"github.com/auditaspect/auditaspect/internal/audit"
	"github.com/auditaspect/auditaspect/internal/handlers"
	"github.com/auditaspect/auditaspect/internal/intercept"
)

// countingWriter is an in-memory handlers.Writer that supports the
// count-by-phase-and-target assertions of the scenario.
type countingWriter struct {
	mu      sync.Mutex
	records []handlers.Record
}

func (w *countingWriter) WriteSync(_ context.Context, rec handlers.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, rec)
	return nil
}

func (w *countingWriter) WriteAsync(rec handlers.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, rec)
	return nil
}

func (w *countingWriter) Close() error { return nil }

func (w *countingWriter) countByPhaseAndTarget(phase, target string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, rec := range w.records {
		if rec.Phase == phase && rec.Target == target {
			n++
		}
	}
	return n
}

// demoService mirrors the reference workload the engine is exercised
// against: one method audited at type level, one overriding the type
// attachment, and one that always fails.
type demoService struct {
	ic *intercept.Interceptor
}

func (s *demoService) Ok(ctx context.Context, in string) (string, error) {
	ret, err := s.ic.Call(ctx, "DemoService", "Ok", []any{in},
		func(_ context.Context) (any, error) {
			return strings.ToUpper(in), nil
		})
	if err != nil {
		return "", err
	}
	return ret.(string), nil
}

func (s *demoService) OnlyMemorySink(ctx context.Context) error {
	_, err := s.ic.Call(ctx, "DemoService", "OnlyMemorySink", nil,
		func(_ context.Context) (any, error) {
			return nil, nil
		})
	return err
}

func (s *demoService) Boom(ctx context.Context) error {
	_, err := s.ic.Call(ctx, "DemoService", "Boom", nil,
		func(_ context.Context) (any, error) {
			return nil, oops.Code("INVALID_ARGUMENT").Errorf("expected")
		})
	return err
}

var _ = Describe("audited demo service", func() {
	var (
		writer *countingWriter
		mem    *handlers.MemoryHandler
		demo   *demoService
	)

	BeforeEach(func() {
		writer = &countingWriter{}
		mem = handlers.NewMemoryHandler()

		db := handlers.NewDBHandler(writer, GinkgoT().TempDir()+"/audit-wal.jsonl")
		DeferCleanup(db.Close)

		registry := audit.NewRegistry(map[string]audit.Handler{
			"dbAudit":      db,
			"memAudit":     mem,
			"failingAudit": handlers.FailingHandler{},
		})
		dispatcher, err := audit.NewDispatcher(registry)
		Expect(err).NotTo(HaveOccurred())

		bindings, err := audit.NewBindings([]audit.Attachment{
			{Target: "DemoService", Handlers: []string{"dbAudit", "memAudit"}},
			{Target: "DemoService#OnlyMemorySink", Handlers: []string{"memAudit"}},
			{Target: "DemoService#Boom", Handlers: []string{"dbAudit", "failingAudit", "memAudit"}},
		})
		Expect(err).NotTo(HaveOccurred())

		ic, err := intercept.New(bindings, dispatcher)
		Expect(err).NotTo(HaveOccurred())
		demo = &demoService{ic: ic}
	})

	It("writes BEFORE and AFTER_RETURNING to db and memory on success", func() {
		res, err := demo.Ok(context.Background(), "abc")

		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal("ABC"))

		Expect(writer.countByPhaseAndTarget("BEFORE", "DemoService#Ok")).To(Equal(1))
		Expect(writer.countByPhaseAndTarget("AFTER_RETURNING", "DemoService#Ok")).To(Equal(1))

		Expect(mem.Events()).To(ContainElement(HavePrefix("BEFORE:")))
		Expect(mem.Events()).To(ContainElement(HavePrefix("AFTER_RETURNING:")))
	})

	It("lets a method-level attachment override the type-level handlers", func() {
		Expect(demo.OnlyMemorySink(context.Background())).To(Succeed())

		Expect(writer.countByPhaseAndTarget("BEFORE", "DemoService#OnlyMemorySink")).To(BeZero())
		Expect(writer.countByPhaseAndTarget("AFTER_RETURNING", "DemoService#OnlyMemorySink")).To(BeZero())

		Expect(mem.Events()).To(ContainElement("BEFORE:DemoService#OnlyMemorySink"))
		Expect(mem.Events()).To(ContainElement("AFTER_RETURNING:DemoService#OnlyMemorySink"))
	})

	It("writes AFTER_THROWING and stays fail-safe with a failing handler", func() {
		err := demo.Boom(context.Background())

		// The business error propagates to the caller unchanged.
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("expected"))

		Expect(writer.countByPhaseAndTarget("BEFORE", "DemoService#Boom")).To(Equal(1))
		Expect(writer.countByPhaseAndTarget("AFTER_THROWING", "DemoService#Boom")).To(Equal(1))

		Expect(mem.Events()).To(ContainElement("AFTER_THROWING:DemoService#Boom"))
	})

	It("records the error class and message on AFTER_THROWING", func() {
		Expect(demo.Boom(context.Background())).To(HaveOccurred())

		var thrown []handlers.Record
		for _, rec := range writer.records {
			if rec.Phase == "AFTER_THROWING" {
				thrown = append(thrown, rec)
			}
		}
		Expect(thrown).To(HaveLen(1))
		Expect(thrown[0].ErrorClass).To(Equal("INVALID_ARGUMENT"))
		Expect(thrown[0].ErrorMessage).To(ContainSubstring("expected"))
	})

	It("never fires AFTER_RETURNING for a throwing call", func() {
		Expect(demo.Boom(context.Background())).To(HaveOccurred())

		Expect(writer.countByPhaseAndTarget("AFTER_RETURNING", "DemoService#Boom")).To(BeZero())
		Expect(mem.Events()).NotTo(ContainElement("AFTER_RETURNING:DemoService#Boom"))
	})
})
