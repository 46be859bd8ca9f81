package swarmd

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// SolverGRPCServer implements SolverServiceServer on top of a RunStore and RunExecutor.
type SolverGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
}

var _ SolverServiceServer = (*SolverGRPCServer)(nil)

// NewSolverGRPCServer creates a new SolverGRPCServer with the provided RunStore and RunExecutor.
func NewSolverGRPCServer(store *RunStore, executor *RunExecutor) *SolverGRPCServer {
	return &SolverGRPCServer{
		store:    store,
		Executor: executor,
	}
}

func decodeSubmit(in *structpb.Struct) (SubmitRequest, error) {
	if in == nil {
		return SubmitRequest{}, status.Error(codes.InvalidArgument, "request is required")
	}
	req := createRunRequest{Solver: config.DefaultSolver()}
	if err := fromStruct(in, &req); err != nil {
		return SubmitRequest{}, status.Error(codes.InvalidArgument, err.Error())
	}
	sub := SubmitRequest{RunID: req.RunID, Solver: req.Solver}
	if req.CallbackURL != "" {
		sub.Callback = &Callback{URL: req.CallbackURL, Secret: req.CallbackSecret}
	}
	return sub, nil
}

func runResponse(rec *RunRecord) (*structpb.Struct, error) {
	out, err := toStruct(map[string]any{"run": convertRunToJSON(rec)})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func runIDOf(in *structpb.Struct) string {
	return in.GetFields()["run_id"].GetStringValue()
}

func (s *SolverGRPCServer) Solve(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeSubmit(in)
	if err != nil {
		return nil, err
	}

	rec, err := s.Executor.Run(ctx, req)
	if err != nil {
		return nil, grpcError(err)
	}

	switch rec.Run.Status {
	case models.RunStatusFailed:
		return nil, status.Error(codes.Internal, rec.Run.Error)
	case models.RunStatusCancelled:
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		return nil, status.Error(codes.Canceled, "run cancelled")
	}

	logger.Info("run solved (gRPC)", "run_id", rec.Run.ID)
	return runResponse(rec)
}

func (s *SolverGRPCServer) SubmitRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeSubmit(in)
	if err != nil {
		return nil, err
	}

	rec, err := s.Executor.Submit(req)
	if err != nil {
		return nil, grpcError(err)
	}

	logger.Info("run created (gRPC)", "run_id", rec.Run.ID)
	return runResponse(rec)
}

func (s *SolverGRPCServer) GetRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID := runIDOf(in)
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return runResponse(rec)
}

func (s *SolverGRPCServer) ListRuns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	limit := int(fields["limit"].GetNumberValue())
	offset := int(fields["offset"].GetNumberValue())

	var st models.RunStatus
	if name := fields["status"].GetStringValue(); name != "" {
		parsed, ok := models.ParseRunStatus(name)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown status: %s", name)
		}
		st = parsed
	}

	recs := s.store.List(limit, offset, st)
	runs := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, convertRunToJSON(rec))
	}
	out, err := toStruct(map[string]any{"runs": runs})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *SolverGRPCServer) StopRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID := runIDOf(in)
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}

	updated, err := s.Executor.Stop(runID)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("run cancelled (gRPC)", "run_id", runID)
	return runResponse(updated)
}

func (s *SolverGRPCServer) StreamHistory(in *structpb.Struct, stream grpc.ServerStream) error {
	runID := runIDOf(in)
	if runID == "" {
		return status.Error(codes.InvalidArgument, "run_id is required")
	}
	if _, ok := s.store.Get(runID); !ok {
		return status.Error(codes.NotFound, "run not found")
	}

	interval := 200 * time.Millisecond
	if ms := in.GetFields()["interval_ms"].GetNumberValue(); ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	collector := s.Executor.Collector()
	sent := 0
	for {
		rec, ok := s.store.Get(runID)
		if !ok {
			return status.Error(codes.NotFound, "run not found")
		}

		for _, p := range collector.Since(runID, sent) {
			point := convertPointToJSON(p)
			point["run_id"] = runID
			msg, err := toStruct(point)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
			sent++
		}

		if rec.Run.Status.Terminal() {
			return nil
		}

		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case <-ticker.C:
		}
	}
}

// grpcError maps executor and store errors to gRPC status errors
func grpcError(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, ErrRunNotFound):
		code = codes.NotFound
	case errors.Is(err, ErrRunIDMissing),
		errors.Is(err, ErrInvalidRunID),
		errors.Is(err, ErrInvalidSolver):
		code = codes.InvalidArgument
	case errors.Is(err, ErrRunExists):
		code = codes.AlreadyExists
	case errors.Is(err, ErrRunTerminal),
		errors.Is(err, ErrRunNotStoppable):
		code = codes.FailedPrecondition
	case errors.Is(err, ErrRateLimited):
		code = codes.ResourceExhausted
	}
	return status.Error(code, err.Error())
}
