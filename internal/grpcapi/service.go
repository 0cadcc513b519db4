package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/montyhall/internal/montyhall"
	"github.com/xtding233/montyhall/internal/simulator"
)

// Service adapts simulator.Service to SimulatorServer.
type Service struct {
	sim *simulator.Service
}

func NewService(sim *simulator.Service) *Service {
	return &Service{sim: sim}
}

// RunTrial plays one game. Request fields: doors, switch, seed.
func (s *Service) RunTrial(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	doors, err := intField(in, "doors")
	if err != nil {
		return nil, handleError(err)
	}
	seed, err := seedField(in)
	if err != nil {
		return nil, handleError(err)
	}
	out, err := s.sim.Trial(doors, in.GetFields()["switch"].GetBoolValue(), seed)
	if err != nil {
		return nil, handleError(err)
	}
	return toStruct(out)
}

// Estimate runs one strategy. Request fields: scenario, doors, trials,
// strategy ("switch" or "stay"; a bool "switch" field is also accepted), seed.
func (s *Service) Estimate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := parseRequest(in)
	if err != nil {
		return nil, handleError(err)
	}
	req.Strategy = montyhall.Strategy(in.GetFields()["strategy"].GetStringValue())
	if sw, ok := in.GetFields()["switch"]; ok && req.Strategy == "" {
		req.Strategy = montyhall.StrategyFor(sw.GetBoolValue())
	}
	out, err := s.sim.Estimate(ctx, req)
	if err != nil {
		return nil, handleError(err)
	}
	return toStruct(out)
}

// Compare runs both strategies. Request fields: scenario, doors, trials, seed.
func (s *Service) Compare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := parseRequest(in)
	if err != nil {
		return nil, handleError(err)
	}
	out, err := s.sim.Compare(ctx, req)
	if err != nil {
		return nil, handleError(err)
	}
	return toStruct(out)
}

func parseRequest(in *structpb.Struct) (simulator.EstimateRequest, error) {
	var req simulator.EstimateRequest
	var err error
	if req.NumDoors, err = intField(in, "doors"); err != nil {
		return req, err
	}
	if req.NumTrials, err = intField(in, "trials"); err != nil {
		return req, err
	}
	if req.Seed, err = seedField(in); err != nil {
		return req, err
	}
	req.Scenario = in.GetFields()["scenario"].GetStringValue()
	return req, nil
}

// intField reads a whole number; a missing field is 0.
func intField(in *structpb.Struct, key string) (int, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, nil
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be an integer", montyhall.ErrInvalidConfiguration, key)
	}
	return int(n.NumberValue), nil
}

// seedField accepts a decimal string (exact for any uint64) or a number.
func seedField(in *structpb.Struct) (*uint64, error) {
	v, ok := in.GetFields()["seed"]
	if !ok {
		return nil, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		seed, err := strconv.ParseUint(k.StringValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid seed %q", montyhall.ErrInvalidConfiguration, k.StringValue)
		}
		return &seed, nil
	case *structpb.Value_NumberValue:
		if k.NumberValue < 0 || k.NumberValue != math.Trunc(k.NumberValue) || k.NumberValue >= 1<<53 {
			return nil, fmt.Errorf("%w: seed must be a non-negative integer below 2^53, or a string", montyhall.ErrInvalidConfiguration)
		}
		seed := uint64(k.NumberValue)
		return &seed, nil
	case *structpb.Value_NullValue:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: invalid seed", montyhall.ErrInvalidConfiguration)
}

// toStruct renders v through its JSON form. Seeds are JSON strings, so they
// survive the trip through Struct's double-valued numbers.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// handleError maps domain errors onto gRPC status codes.
func handleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, montyhall.ErrInvalidConfiguration):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, "an unexpected error occurred")
}
