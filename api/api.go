package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/passage-server/api/model"
	"github.com/a-bouts/passage-server/fleet"
	"github.com/a-bouts/passage-server/latlon"
	"github.com/a-bouts/passage-server/playback"
	"github.com/a-bouts/passage-server/store"
	"github.com/a-bouts/passage-server/trajectory"
	"github.com/a-bouts/passage-server/wind"
	"github.com/a-bouts/passage-server/xmpp"
	"github.com/gorilla/mux"
	"github.com/pkg/profile"
)

type server struct {
	cpuprofile bool
	w          *wind.Winds
	f          *fleet.Fleet
	st         *store.Store
	x          *xmpp.Xmpp
}

func InitServer(cpuprofile bool, w *wind.Winds, f *fleet.Fleet, st *store.Store, x *xmpp.Xmpp) *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	s := server{cpuprofile: cpuprofile,
		w:  w,
		f:  f,
		st: st,
		x:  x,
	}

	api := router.PathPrefix("/").Subrouter()

	api.HandleFunc("/passage/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/passage/api/v1").Subrouter()
	apiV1.HandleFunc("/trajectory", s.trajectory).Methods("POST")
	apiV1.HandleFunc("/state", s.state).Methods("POST")
	apiV1.HandleFunc("/playback", s.playback).Methods("POST")
	apiV1.HandleFunc("/wind/{stamp}/{lat}/{lon}", s.wind).Methods("GET")
	apiV1.HandleFunc("/environment/{lat}/{lon}", s.environment).Methods("GET")
	apiV1.HandleFunc("/ships", s.ships).Methods("GET")
	apiV1.HandleFunc("/plans", s.listPlans).Methods("GET")
	apiV1.HandleFunc("/plans/{name}", s.getPlan).Methods("GET")
	apiV1.HandleFunc("/plans/{name}", s.putPlan).Methods("PUT")

	return router
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	json.NewEncoder(w).Encode(health{Status: "Ok"})
}

// decodePlan decodes a request body into dst, which embeds model.Plan,
// and normalizes it. It writes the error response itself.
func decodePlan(w http.ResponseWriter, req *http.Request, dst interface{}, plan *model.Plan) bool {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := plan.Normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *server) trajectory(w http.ResponseWriter, req *http.Request) {
	if s.cpuprofile {
		defer profile.Start().Stop()
	}

	fields := log.Fields{
		"action": "trajectory",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	requestLogger := log.WithFields(fields)

	var p model.Plan
	if !decodePlan(w, req, &p, &p) {
		return
	}

	requestLogger.Infof("Trajectory of %d waypoints, drift %t", len(p.Waypoints), p.Environment.DriftEnabled)

	start := time.Now()

	legs := trajectory.BuildLegs(p.Waypoints, p.Ship, p.PivotDuration, p.Environment)

	delta := time.Now().Sub(start)
	requestLogger.Infof("Trajectory took %s", delta.String())

	s.notifyViolations(legs)

	json.NewEncoder(w).Encode(model.Trajectory{
		Legs:          legs,
		TotalDuration: trajectory.TotalDuration(legs),
	})
}

// notifyViolations pings the configured xmpp contact when a plan asks
// for tighter turns than the ship can make.
func (s *server) notifyViolations(legs []trajectory.Leg) {
	if s.x == nil || !s.x.Enabled() {
		return
	}

	var ids []string
	for _, leg := range legs {
		if leg.TurnRadiusViolation {
			ids = append(ids, strconv.Itoa(leg.Id))
		}
	}
	if len(ids) == 0 {
		return
	}

	go func() {
		msg := fmt.Sprintf("Turn radius violation on leg(s) %s", strings.Join(ids, ", "))
		if err := s.x.Send(msg); err != nil {
			log.WithError(err).Error("Error sending xmpp notification")
		}
	}()
}

func (s *server) state(w http.ResponseWriter, req *http.Request) {

	var r model.State
	if !decodePlan(w, req, &r, &r.Plan) {
		return
	}

	legs := trajectory.BuildLegs(r.Waypoints, r.Ship, r.PivotDuration, r.Environment)
	st := trajectory.Interpolate(legs, r.Waypoints, r.Progress, trajectory.TotalDuration(legs))
	if st == nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	json.NewEncoder(w).Encode(st)
}

func (s *server) playback(w http.ResponseWriter, req *http.Request) {

	fields := log.Fields{
		"action": "playback",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	requestLogger := log.WithFields(fields)

	var r model.Playback
	if !decodePlan(w, req, &r, &r.Plan) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	legs := trajectory.BuildLegs(r.Waypoints, r.Ship, r.PivotDuration, r.Environment)

	multiplier := playback.ClampMultiplier(r.Multiplier)
	requestLogger.Infof("Playback of %d legs at %.0fx", len(legs), multiplier)

	// one driver per stream; a dropped frame is fine, the terminal nil
	// arrives through the close
	states := make(chan *trajectory.AnimationState, 16)
	d := playback.NewDriver(playback.NewWallScheduler(0), func(st *trajectory.AnimationState) {
		select {
		case states <- st:
		default:
		}
		if st == nil {
			close(states)
		}
	})

	session := d.Start(legs, r.Waypoints, multiplier)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ctx := req.Context()
	for {
		select {
		case <-ctx.Done():
			d.Cancel(session)
			return
		case st, open := <-states:
			if !open {
				fmt.Fprintf(w, "event: clear\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			if st == nil {
				continue
			}
			b, _ := json.Marshal(st)
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}

func (s *server) wind(w http.ResponseWriter, r *http.Request) {
	stamp := mux.Vars(r)["stamp"]

	lat, err := strconv.ParseFloat(mux.Vars(r)["lat"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(mux.Vars(r)["lon"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	type windResult struct {
		Wind  float64 `json:"wind"`
		Speed float64 `json:"speed"`
	}

	ws := s.w.Winds(stamp)
	if len(ws) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var res windResult
	res.Wind, res.Speed = wind.Interpolate(ws, nil, lat, lon, 0)
	res.Speed *= wind.MsToKnots

	log.Infof("Wind %s (%f,%f) : %.1f° %.1f kt", stamp, lat, lon, res.Wind, res.Speed)

	json.NewEncoder(w).Encode(res)
}

func (s *server) environment(w http.ResponseWriter, r *http.Request) {

	lat, err := strconv.ParseFloat(mux.Vars(r)["lat"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(mux.Vars(r)["lon"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	direction, speed := s.w.Conditions(time.Now(), latlon.LatLon{Lat: lat, Lon: lon})

	env := trajectory.Environment{
		DriftEnabled: speed > 0,
		Wind:         trajectory.Flow{Speed: speed, Direction: direction},
	}

	json.NewEncoder(w).Encode(env)
}

func (s *server) ships(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.f.List())
}

func (s *server) listPlans(w http.ResponseWriter, r *http.Request) {
	names := s.st.List()
	if names == nil {
		names = []string{}
	}
	json.NewEncoder(w).Encode(names)
}

func (s *server) getPlan(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	plan, err := s.st.Load(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(plan)
}

func (s *server) putPlan(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var plan store.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	plan.Name = name

	if err := s.st.Save(plan); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Infof("Saved plan '%s' (%d waypoints)", name, len(plan.Waypoints))

	w.WriteHeader(http.StatusNoContent)
}

func getIp(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("No valid ip found")
}
