package detector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const scriptName = "hand_landmarker.py"

// ErrScriptNotFound is returned when the landmark service script cannot be located.
var ErrScriptNotFound = errors.New(scriptName + " not found")

// landmarkProcess is one running instance of the landmark service.
//
// Frames go to stdin as a 4-byte big-endian length and the JPEG bytes.
// Each frame is answered with a single JSON line on stdout.
type landmarkProcess struct {
	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Reader
}

type serviceReply struct {
	Hands []WireHand `json:"hands"`
	Error string     `json:"error"`
}

func spawn(python string, args ...string) (*landmarkProcess, error) {
	cmd := exec.Command(python, args...)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("landmark service stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("landmark service stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start landmark service: %w", err)
	}
	return &landmarkProcess{cmd: cmd, in: in, out: bufio.NewReader(out)}, nil
}

func (p *landmarkProcess) send(jpeg []byte) (serviceReply, error) {
	var reply serviceReply

	frame := make([]byte, 4+len(jpeg))
	binary.BigEndian.PutUint32(frame, uint32(len(jpeg)))
	copy(frame[4:], jpeg)
	if _, err := p.in.Write(frame); err != nil {
		return reply, fmt.Errorf("send frame: %w", err)
	}

	line, err := p.out.ReadBytes('\n')
	if err != nil {
		return reply, fmt.Errorf("read reply: %w", err)
	}
	if err := json.Unmarshal(line, &reply); err != nil {
		return reply, fmt.Errorf("decode reply: %w", err)
	}
	if reply.Error != "" {
		return reply, fmt.Errorf("landmark service: %s", reply.Error)
	}
	return reply, nil
}

// stop closes stdin, which the service treats as end of input, and reaps it.
func (p *landmarkProcess) stop() error {
	p.in.Close()
	return p.cmd.Wait()
}

// MediaPipeDetector runs the MediaPipe hand landmarker as a Python child
// process. The child is started on the first frame and stopped again after
// Config.IdleTimeout without frames.
type MediaPipeDetector struct {
	cfg    Config
	script string
	python string

	mu   sync.Mutex
	proc *landmarkProcess
	idle *time.Timer
}

// NewMediaPipeDetector resolves the script and interpreter paths. No process
// is started until Detect is called.
func NewMediaPipeDetector(cfg Config) (*MediaPipeDetector, error) {
	script := cfg.ScriptPath
	if script == "" {
		script = findScript()
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("landmark script: %w", err)
	}

	python := cfg.PythonPath
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	def := DefaultConfig()
	if cfg.MaxHands <= 0 {
		cfg.MaxHands = def.MaxHands
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}

	return &MediaPipeDetector{cfg: cfg, script: script, python: python}, nil
}

// Detect encodes frame as JPEG and asks the service for landmarks. At most
// Config.MaxHands hands are returned.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}

	jpeg, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer jpeg.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.proc == nil {
		proc, err := spawn(d.python, d.args()...)
		if err != nil {
			return nil, err
		}
		d.proc = proc
	}

	reply, err := d.proc.send(jpeg.GetBytes())
	if err != nil {
		// The pipe is out of sync after a failed exchange.
		d.stopLocked()
		return nil, err
	}
	d.armIdle()

	hands := make([]HandLandmarks, 0, min(len(reply.Hands), d.cfg.MaxHands))
	for i, wh := range reply.Hands {
		if i == d.cfg.MaxHands {
			break
		}
		lm, err := wh.Landmarks()
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		hands = append(hands, lm)
	}
	return hands, nil
}

// Close stops the service if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) args() []string {
	float := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		d.script,
		"--max-hands", strconv.Itoa(d.cfg.MaxHands),
		"--min-detection-confidence", float(d.cfg.MinConfidence),
		"--min-tracking-confidence", float(d.cfg.MinTrackingConf),
	}
}

func (d *MediaPipeDetector) armIdle() {
	if d.idle != nil {
		d.idle.Reset(d.cfg.IdleTimeout)
		return
	}
	d.idle = time.AfterFunc(d.cfg.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stopLocked()
	})
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.proc == nil {
		return nil
	}
	err := d.proc.stop()
	d.proc = nil
	return err
}

// searchDirs lists where the script and virtualenv are looked for, in order:
// the working directory, its parent, the executable's directory and
// ~/.fingerspell.
func searchDirs() []string {
	dirs := []string{".", ".."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".fingerspell"))
	}
	return dirs
}

func findScript() string {
	return findUnder(filepath.Join("scripts", scriptName))
}

func findVenvPython() string {
	return findUnder(filepath.Join("venv", "bin", "python"))
}

// findUnder returns the absolute path of rel under the first search
// directory that has it, or "".
func findUnder(rel string) string {
	for _, dir := range searchDirs() {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
