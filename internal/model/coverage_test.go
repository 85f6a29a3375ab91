package model

import "testing"

func TestNewCoverageDescriptorPercentage(t *testing.T) {
	cov := NewCoverageDescriptor(RetrievalDiverse, 3, 12, nil, nil, "sample")
	if cov.CoveragePercentage != 25.0 {
		t.Errorf("coverage percentage = %v, want 25.0", cov.CoveragePercentage)
	}
	if cov.BlindSpots == nil {
		t.Error("BlindSpots should never be nil")
	}
	if cov.PerDocument == nil {
		t.Error("PerDocument should never be nil")
	}
}

func TestNewCoverageDescriptorZeroTotal(t *testing.T) {
	cov := NewCoverageDescriptor(RetrievalSimilarity, 0, 0, nil, nil, "")
	if cov.CoveragePercentage != 0 {
		t.Errorf("coverage percentage = %v, want 0 for zero total", cov.CoveragePercentage)
	}
}
