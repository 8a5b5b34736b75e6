package qdrant_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	clerklogger "github.com/papercomputeco/clerk/pkg/logger"
	"github.com/papercomputeco/clerk/pkg/vector"
	"github.com/papercomputeco/clerk/pkg/vector/qdrant"
)

var _ = Describe("Driver", func() {
	Describe("NewDriver", func() {
		It("should return an error when host is empty", func() {
			_, err := qdrant.NewDriver(context.Background(), qdrant.Config{Dimensions: 4}, clerklogger.Nop())
			Expect(err).To(MatchError(ContainSubstring("qdrant host is required")))
		})

		It("should return an error when dimensions are missing", func() {
			_, err := qdrant.NewDriver(context.Background(), qdrant.Config{Host: "localhost"}, clerklogger.Nop())
			Expect(err).To(MatchError(ContainSubstring("dimensions")))
		})

		It("should connect to a running instance", func() {
			Skip("Requires running Qdrant instance")
		})
	})

	Describe("PointID", func() {
		It("is stable per document id", func() {
			Expect(qdrant.PointID("e1")).To(Equal(qdrant.PointID("e1")))
			Expect(qdrant.PointID("e1")).NotTo(Equal(qdrant.PointID("e2")))
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*qdrant.Driver)(nil)
		})
	})
})
