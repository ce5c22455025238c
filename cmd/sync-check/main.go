// Command sync-check compares read endpoints of two API instances that share one document
// backend. Once both have applied the latest revision their answers must be identical.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target      target
	StatusA     int
	StatusB     int
	StatusMatch bool
	BodyMatch   bool
	Error       error
	DurationA   time.Duration
	DurationB   time.Duration
}

var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/api/v1/course-lines", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/requests", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/users/professors", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/users/3/notifications"},
}

func main() {
	var (
		baseA       string
		baseB       string
		targetsPath string
		identifier  string
		password    string
		timeout     time.Duration
	)

	flag.StringVar(&baseA, "a", "http://localhost:8080", "first instance base URL")
	flag.StringVar(&baseB, "b", "http://localhost:8081", "second instance base URL")
	flag.StringVar(&targetsPath, "targets", "", "optional JSON targets file")
	flag.StringVar(&identifier, "user", "COORD001", "coordinator code or email")
	flag.StringVar(&password, "password", "123", "coordinator password")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}

	client := &http.Client{Timeout: timeout}
	a := instance{base: baseA, client: client}
	b := instance{base: baseB, client: client}
	for _, in := range []*instance{&a, &b} {
		if err := in.login(identifier, password); err != nil {
			log.Fatalf("login against %s failed: %v", in.base, err)
		}
	}

	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)
	for _, t := range targets {
		comp := compareTarget(a, b, t)
		switch {
		case comp.Error != nil:
			if t.Critical {
				breaking++
			}
		case !comp.StatusMatch || !comp.BodyMatch:
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

type instance struct {
	base   string
	client *http.Client
	token  string
}

func (in *instance) login(identifier, password string) error {
	payload, err := json.Marshal(map[string]string{"identifier": identifier, "password": password})
	if err != nil {
		return err
	}
	url := strings.TrimRight(in.base, "/") + "/api/v1/auth/login"
	resp, err := in.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.Data.AccessToken == "" {
		return errors.New("empty access token")
	}
	in.token = body.Data.AccessToken
	return nil
}

func (in instance) do(tgt target) (*http.Response, time.Duration, error) {
	if in.client == nil {
		return nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(in.base, "/")+path, nil)
	if err != nil {
		return nil, 0, err
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
	}
	start := time.Now()
	resp, err := in.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

func compareTarget(a, b instance, tgt target) comparison {
	comp := comparison{Target: tgt}
	respA, durA, errA := a.do(tgt)
	respB, durB, errB := b.do(tgt)
	comp.DurationA = durA
	comp.DurationB = durB

	if errA != nil {
		if errB == nil {
			respB.Body.Close()
		}
		comp.Error = fmt.Errorf("%s: %w", a.base, errA)
		return comp
	}
	defer respA.Body.Close()
	if errB != nil {
		comp.Error = fmt.Errorf("%s: %w", b.base, errB)
		return comp
	}
	defer respB.Body.Close()

	comp.StatusA = respA.StatusCode
	comp.StatusB = respB.StatusCode
	comp.StatusMatch = comp.StatusA == comp.StatusB

	bodyA, err := io.ReadAll(respA.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read %s body: %w", a.base, err)
		return comp
	}
	bodyB, err := io.ReadAll(respB.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read %s body: %w", b.base, err)
		return comp
	}

	comp.BodyMatch = bodiesEqual(bodyA, bodyB)
	return comp
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(aj, bj)
}

func printReport(results []comparison) {
	fmt.Println("Sync Check Report")
	fmt.Println("=================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  A: %d (%s)  B: %d (%s)\n", res.StatusA, res.DurationA, res.StatusB, res.DurationB)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
