// Package web is the artifact inspection server: header fields,
// animated-track counts, decompressed poses and glTF exports over plain HTTP,
// live pose scrubbing over a websocket.
package web

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var serverStore *Store

func StartServer(addr string, store *Store) error {
	serverStore = store

	r := mux.NewRouter()
	r.HandleFunc("/json/clip", HandlerClipList)
	r.HandleFunc("/json/clip/{name}", HandlerClipInfo)
	r.HandleFunc("/json/clip/{name}/pose", HandlerClipPose)
	r.HandleFunc("/dump/clip/{name}", HandlerClipDump)
	r.HandleFunc("/gltf/clip/{name}", HandlerClipGLTF)
	r.HandleFunc("/ws/clip/{name}", HandlerClipWebsocket)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	logrus.WithField("addr", addr).Info("starting inspection server")

	return http.ListenAndServe(addr, h)
}
