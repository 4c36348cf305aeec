// Command replaybuffer serves the replay buffer: self-play workers store
// trajectories, the trainer samples uniform batches.
package main

import (
	"flag"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/snakezero/replay"
)

var (
	addr = flag.String("addr", ":8000", "listen address")
	size = flag.Int("replay_buffer_size", 256000, "Size of the replay buffer.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	gin.SetMode(gin.ReleaseMode)
	srv := replay.NewServer(*size, time.Now().UnixNano())
	klog.Infof("replay buffer listening on %s, capacity %d positions", *addr, *size)
	if err := srv.Router().Run(*addr); err != nil {
		klog.Fatalf("replay buffer: %v", err)
	}
}
