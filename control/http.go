// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package control

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cellsim/cellsim/logger"
	"github.com/cellsim/cellsim/topology"
	"github.com/cellsim/cellsim/types"
)

func errNoSuchUE(id types.UEID) error {
	return errors.Errorf("no such UE: %d", id)
}

// Server is the HTTP control surface of spec.md §6, a thin json-in/json-out
// wrapper over a Facade. Every route literally named in §6 is implemented
// here; nothing else is.
type Server struct {
	Facade *Facade
	mux    *http.ServeMux
}

// NewServer builds a Server and registers every route.
func NewServer(f *Facade) *Server {
	s := &Server{Facade: f, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/control/pause", s.handleControlPause)
	s.mux.HandleFunc("/control/drop", s.handleControlDrop)
	s.mux.HandleFunc("/control/delay", s.handleControlDelay)
	s.mux.HandleFunc("/init/simulation", s.handleInitSimulation)
	s.mux.HandleFunc("/configure", s.handleConfigure)
	s.mux.HandleFunc("/init/basestation", s.handleInitBasestation)
	s.mux.HandleFunc("/init/userequipment", s.handleInitUserEquipment)
	s.mux.HandleFunc("/update/basestation/", s.handleUpdateBasestation)
	s.mux.HandleFunc("/update/userequipment/", s.handleUpdateUserEquipment)
	s.mux.HandleFunc("/get/basestation/", s.handleGetBasestation)
	s.mux.HandleFunc("/get/userequipment/", s.handleGetUserEquipment)
	s.mux.HandleFunc("/check/userequipment/", s.handleCheckUserEquipment)
	s.mux.HandleFunc("/check/link/", s.handleCheckLink)
	s.mux.HandleFunc("/packet_transfer", s.handlePacketTransfer)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("control: failed encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// idFromPath extracts the trailing {id} path segment after prefix, e.g.
// idFromPath("/get/basestation/3", "/get/basestation/") == "3".
func idFromPath(path, prefix string) (types.TowerID, error) {
	raw := strings.TrimPrefix(path, prefix)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return types.TowerID(n), nil
}

// --- /control/* ---

func (s *Server) handleControlPause(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Paused {
		s.Facade.Pause()
	} else {
		s.Facade.Resume()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": body.Paused})
}

func (s *Server) handleControlDrop(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Drop bool `json:"drop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Facade.SetDropping(body.Drop)
	writeJSON(w, http.StatusOK, map[string]bool{"drop": body.Drop})
}

func (s *Server) handleControlDelay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delay bool `json:"delay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Facade.SetDelaying(body.Delay)
	writeJSON(w, http.StatusOK, map[string]bool{"delay": body.Delay})
}

// --- /init/simulation, /configure ---

func (s *Server) handleInitSimulation(w http.ResponseWriter, r *http.Request) {
	s.Facade.Resume()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": "Simulation Initialized",
		"run_id":  s.Facade.RunID,
	})
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Height         float64 `json:"height"`
		Width          float64 `json:"width"`
		PixelsPerMeter float64 `json:"pixels_per_meter"`
		NetworkType    string  `json:"network_type"`
		StartingIP     string  `json:"starting_ip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err := s.Facade.Configure(ConfigureRequest{
		HeightM:        body.Height,
		WidthM:         body.Width,
		PixelsPerMeter: body.PixelsPerMeter,
		NetworkType:    body.NetworkType,
		StartingIP:     body.StartingIP,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "Simulation configured"})
}

// --- /init/basestation, /init/userequipment ---

func (s *Server) handleInitBasestation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := s.Facade.AddTower(body.X, body.Y)
	tower, err := s.Facade.GetTower(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"base_station": towerJSON(tower),
	})
}

func (s *Server) handleInitUserEquipment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.Facade.AddUE(body.X, body.Y)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	ue, err := s.Facade.GetUE(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_equipment": ueJSON(ue),
	})
}

// --- /update/basestation/{id}, /update/userequipment/{id} ---

func (s *Server) handleUpdateBasestation(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/update/basestation/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
		On bool    `json:"on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Facade.SetTowerState(id, body.X, body.Y, body.On); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	tower, err := s.Facade.GetTower(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"base_station": towerJSON(tower)})
}

func (s *Server) handleUpdateUserEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/update/userequipment/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		ChangeIP bool    `json:"change_ip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Facade.SetUEState(types.UEID(id), body.X, body.Y, body.ChangeIP); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	ue, err := s.Facade.GetUE(types.UEID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_equipment": ueJSON(ue)})
}

// --- /get/basestation/{id}, /get/userequipment/{id} ---

func (s *Server) handleGetBasestation(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/get/basestation/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tower, err := s.Facade.GetTower(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"base_station": towerJSON(tower)})
}

func (s *Server) handleGetUserEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/get/userequipment/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ue, err := s.Facade.GetUE(types.UEID(id))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_equipment": ueJSON(ue)})
}

// --- /check/userequipment/{id}, /check/link/{id} ---

func (s *Server) handleCheckUserEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/check/userequipment/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ue := s.Facade.Topology.UERef(types.UEID(id))
	if ue == nil {
		writeError(w, http.StatusNotFound, errNoSuchUE(types.UEID(id)))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           ue.ID,
		"up_packets":   ue.Counters().UploadInFlight(),
		"down_packets": ue.Counters().DownloadInFlight(),
	})
}

func (s *Server) handleCheckLink(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path, "/check/link/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stats, err := s.Facade.LinkStats(types.UEID(id))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"upload_latency":     stats.UploadLatencyMs,
		"download_latency":   stats.DownloadLatencyMs,
		"upload_bandwidth":   stats.UploadBandwidthMbps,
		"download_bandwidth": stats.DownloadBandwidthMbps,
		"upload_per":         stats.UploadPER,
		"download_per":       stats.DownloadPER,
	})
}

func servingJSON(id types.TowerID) int {
	if id == types.InvalidTowerID {
		return -1
	}
	return int(id)
}

func towerJSON(t topology.Tower) map[string]interface{} {
	return map[string]interface{}{
		"id": t.ID,
		"x":  t.Pos.X,
		"y":  t.Pos.Y,
		"on": t.Powered,
	}
}

func ueJSON(u topology.UE) map[string]interface{} {
	return map[string]interface{}{
		"id": u.ID,
		"x":  u.Pos.X,
		"y":  u.Pos.Y,
		"ip": ipString(u.IP),
		"bs": servingJSON(u.Serving),
	}
}

func ipString(ip [4]byte) string {
	return strconv.Itoa(int(ip[0])) + "." + strconv.Itoa(int(ip[1])) + "." +
		strconv.Itoa(int(ip[2])) + "." + strconv.Itoa(int(ip[3]))
}
