package analysis

import (
	"math"
	"testing"
)

func TestIntegratedLoudnessOfSilenceIsFloor(t *testing.T) {
	blocks := make([]Block, 10)
	got := IntegratedLoudness(blocks)
	if got != -70.0 {
		t.Errorf("IntegratedLoudness(silence) = %v, want -70", got)
	}
}

func TestIntegratedLoudnessOfEmptyBlocksIsNegativeInfinity(t *testing.T) {
	got := IntegratedLoudness(nil)
	if !math.IsInf(got, -1) {
		t.Errorf("IntegratedLoudness(nil) = %v, want -Inf", got)
	}
}

func TestIntegratedLoudnessIncreasesWithLevel(t *testing.T) {
	quiet := make([]Block, 20)
	loud := make([]Block, 20)
	for i := range quiet {
		quiet[i] = Block{MeanSquare: 0.001}
		loud[i] = Block{MeanSquare: 0.1}
	}
	if IntegratedLoudness(loud) <= IntegratedLoudness(quiet) {
		t.Errorf("expected louder blocks to report higher LUFS")
	}
}

func TestRelativeGateExcludesQuietOutliers(t *testing.T) {
	blocks := make([]Block, 0, 40)
	for i := 0; i < 38; i++ {
		blocks = append(blocks, Block{MeanSquare: 0.05})
	}
	// a couple of much quieter blocks, 20+ LU below the loud bulk, should be
	// excluded by the relative gate and not drag the average down.
	blocks = append(blocks, Block{MeanSquare: 0.0000005}, Block{MeanSquare: 0.0000005})

	withOutliers := IntegratedLoudness(blocks)
	withoutOutliers := IntegratedLoudness(blocks[:38])
	if math.Abs(withOutliers-withoutOutliers) > 0.5 {
		t.Errorf("relative gate did not exclude outliers: with=%v without=%v", withOutliers, withoutOutliers)
	}
}

func TestMeterFeedAccumulatesSubBlocks(t *testing.T) {
	m := NewMeter(44100, 2)
	samples := make([]int32, 0, 44100*2)
	for i := 0; i < 44100; i++ {
		samples = append(samples, 1000, 1000)
	}
	m.Feed(samples, 16)
	blocks := m.Finish()
	if len(blocks) == 0 {
		t.Fatal("expected at least one gating block from one second of audio")
	}
}

func TestCombineAlbumLoudnessPoolsBlocks(t *testing.T) {
	trackA := make([]Block, 20)
	trackB := make([]Block, 20)
	for i := range trackA {
		trackA[i] = Block{MeanSquare: 0.02}
		trackB[i] = Block{MeanSquare: 0.08}
	}
	combined := CombineAlbumLoudness([][]Block{trackA, trackB})
	soloA := IntegratedLoudness(trackA)
	soloB := IntegratedLoudness(trackB)
	if combined <= soloA || combined >= soloB {
		t.Errorf("combined = %v, want between solo loudnesses %v and %v", combined, soloA, soloB)
	}
}
