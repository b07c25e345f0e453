// Package frontend implements the concrete per-frame rendering pipeline:
// the fixed sequence of passes spec §4.8 names (sky/IBL setup, depth
// pre-pass, Hi-Z pyramid, sun shadow matrix fitting, cascaded shadows,
// histogram auto-exposure, forward shading, SDF indirect diffuse, TAA,
// bloom, tonemap) plus the UI overlay recorded last. It composes
// rgraph/passes/layout/transfer the way the teacher's command-buffer
// wrapper composes its own pass list, but the WHAT it schedules is this
// module's renderer, not WebGPU's validation-and-submit loop.
package frontend

import (
	"math"

	"github.com/lumenrender/lumen/linear"
)

// GlobalShaderInfo is rebuilt once per frame and uploaded to a uniform
// buffer every pass reads, matching the original engine's per-frame
// constant block (camera basis, jitter pair for TAA, exposure state).
type GlobalShaderInfo struct {
	ViewProjection linear.M4

	SunDirection [4]float32
	CameraPos    [4]float32
	CameraRight  [4]float32
	CameraUp     [4]float32
	CameraForward [4]float32

	CurrentFrameJitter  linear.V2
	PreviousFrameJitter linear.V2

	ScreenWidth, ScreenHeight int32

	CameraTanFovHalf  float32
	CameraAspectRatio float32
	NearPlane, FarPlane float32

	SunIlluminanceLux             float32
	ExposureOffset                float32
	ExposureAdaptionSpeedEvPerSec float32

	DeltaTime float32
	Time      float32
	MipBias   float32

	CameraCut bool
	FrameIndex uint32
}

// CameraExtrinsic is the externally-supplied camera pose this package
// consumes each frame (spec §1 Non-goals: "the camera controller (only
// its extrinsic is consumed)").
type CameraExtrinsic struct {
	Position, Forward, Up, Right linear.V3
}

// CameraIntrinsic is the externally-supplied projection parameters.
type CameraIntrinsic struct {
	FovYDegrees, AspectRatio, Near, Far float32
}

// updateGlobalShaderInfo rebuilds info in place from this frame's
// camera state, jitter, and timing — mirroring
// RenderFrontend::updateGlobalShaderInfo.
func updateGlobalShaderInfo(info *GlobalShaderInfo, extrinsic CameraExtrinsic, intrinsic CameraIntrinsic,
	viewProjection linear.M4, jitter, prevJitter linear.V2, screenW, screenH int32,
	deltaTime, timeSeconds float32, frameIndex uint64, cameraCut bool) {

	info.ViewProjection = viewProjection
	info.CameraPos = [4]float32{extrinsic.Position[0], extrinsic.Position[1], extrinsic.Position[2], 1}
	info.CameraRight = [4]float32{extrinsic.Right[0], extrinsic.Right[1], extrinsic.Right[2], 0}
	info.CameraUp = [4]float32{extrinsic.Up[0], extrinsic.Up[1], extrinsic.Up[2], 0}
	info.CameraForward = [4]float32{extrinsic.Forward[0], extrinsic.Forward[1], extrinsic.Forward[2], 0}

	info.CurrentFrameJitter = jitter
	info.PreviousFrameJitter = prevJitter

	info.ScreenWidth, info.ScreenHeight = screenW, screenH

	info.CameraTanFovHalf = tanHalfFovY(intrinsic.FovYDegrees)
	info.CameraAspectRatio = intrinsic.AspectRatio
	info.NearPlane, info.FarPlane = intrinsic.Near, intrinsic.Far

	info.DeltaTime = deltaTime
	info.Time = timeSeconds
	info.FrameIndex = uint32(frameIndex)
	info.CameraCut = cameraCut
}

func tanHalfFovY(fovYDegrees float32) float32 {
	const degToRad = math.Pi / 180
	return float32(math.Tan(float64(fovYDegrees) * degToRad / 2))
}
