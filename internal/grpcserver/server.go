// Package grpcserver implements the geo.v1.GeoService gRPC server.
//
// Messages are google.protobuf.Struct values carrying the same JSON shapes
// as the HTTP API, so no generated code is needed. The server delegates all
// business logic to proximity.Service and recommend.Service and handles only
// the transport concerns: metadata extraction, error mapping and conversion
// between domain values and Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
	"jobboard/geo-service/internal/proximity"
	"jobboard/geo-service/internal/recommend"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "geo.v1.GeoService"

// GeoServiceServer is the server API for geo.v1.GeoService.
type GeoServiceServer interface {
	NearbyJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NearbyCandidates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecommendJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateLocation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements GeoServiceServer.
type Server struct {
	prox          *proximity.Service
	rec           *recommend.Service
	defaultRadius float64
	defaultTopK   int
}

// NewServer constructs a gRPC Server backed by the given services.
func NewServer(prox *proximity.Service, rec *recommend.Service, defaultRadiusKm float64, defaultTopK int) *Server {
	return &Server{prox: prox, rec: rec, defaultRadius: defaultRadiusKm, defaultTopK: defaultTopK}
}

// Register attaches srv to gs.
func Register(gs *grpc.Server, srv GeoServiceServer) {
	gs.RegisterService(&serviceDesc, srv)
}

// ─── RPC implementations ─────────────────────────────────────────────────────

// NearbyJobs expects {lat, lng, maxDistanceKm?, title?, category?, type?}.
func (s *Server) NearbyJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	origin, radius, err := s.searchArea(req)
	if err != nil {
		return nil, err
	}
	f := proximity.JobFilter{
		Title:    str(req, "title"),
		Category: str(req, "category"),
		Type:     str(req, "type"),
	}
	jobs, err := s.prox.NearbyJobs(ctx, origin, radius, f)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return resultsStruct(jobs)
}

// NearbyCandidates expects {lat, lng, maxDistanceKm?, skills?, name?,
// experience?, minRating?}.
func (s *Server) NearbyCandidates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	origin, radius, err := s.searchArea(req)
	if err != nil {
		return nil, err
	}
	f := proximity.CandidateFilter{
		Name:       str(req, "name"),
		Experience: str(req, "experience"),
	}
	if v, ok := num(req, "minRating"); ok {
		f.MinRating = v
	}
	if l := req.GetFields()["skills"].GetListValue(); l != nil {
		for _, v := range l.GetValues() {
			if sv := v.GetStringValue(); sv != "" {
				f.Skills = append(f.Skills, sv)
			}
		}
	}
	cands, err := s.prox.NearbyCandidates(ctx, origin, radius, f)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return resultsStruct(cands)
}

// RecommendJobs ranks jobs for the caller identified by x-user-id metadata.
// It accepts an optional {limit}.
func (s *Server) RecommendJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	topK := s.defaultTopK
	if v, ok := num(req, "limit"); ok {
		if v < 1 || v != math.Trunc(v) {
			return nil, status.Error(codes.InvalidArgument, "limit must be a positive integer")
		}
		topK = int(v)
	}
	recs, err := s.rec.RecommendForUser(ctx, userID, topK)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return resultsStruct(recs)
}

// UpdateLocation expects {id, lat, lng, kind?}; kind defaults to job.
func (s *Server) UpdateLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	lat, okLat := num(req, "lat")
	lng, okLng := num(req, "lng")
	if !okLat || !okLng {
		return nil, status.Error(codes.InvalidArgument, "lat and lng must be numbers")
	}
	id := str(req, "id")

	var (
		out any
		err error
	)
	switch kind := model.EntityKind(str(req, "kind")); kind {
	case "", model.KindJob:
		out, err = s.prox.UpdateJobLocation(ctx, id, lat, lng)
	case model.KindCandidate:
		out, err = s.prox.UpdateCandidateLocation(ctx, id, lat, lng)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown kind %q", kind)
	}
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(out)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Server) searchArea(req *structpb.Struct) (geo.Coordinate, float64, error) {
	lat, okLat := num(req, "lat")
	lng, okLng := num(req, "lng")
	if !okLat || !okLng {
		return geo.Coordinate{}, 0, status.Error(codes.InvalidArgument, "lat and lng must be numbers")
	}
	radius := s.defaultRadius
	if v, ok := num(req, "maxDistanceKm"); ok {
		radius = v
	}
	return geo.Coordinate{Latitude: lat, Longitude: lng}, radius, nil
}

func num(req *structpb.Struct, key string) (float64, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return n.NumberValue, true
}

func str(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// userIDFromCtx extracts the x-user-id value forwarded by the Gateway
// via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, proximity.ErrNotFound) || errors.Is(err, recommend.ErrUserNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var ve *proximity.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, "internal server error")
}

// resultsStruct wraps a result list as {"results": [...]}.
func resultsStruct(v any) (*structpb.Struct, error) {
	return toStruct(map[string]any{"results": v})
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
