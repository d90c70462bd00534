package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/riftline/geodispatch/internal/models"
)

// FileCachingPlanner wraps a Planner with a `<routefile>.calc` JSON cache.
// A zero-value RouteFile disables caching.
type FileCachingPlanner struct {
	Inner     Planner
	RouteFile string
}

// NewFileCachingPlanner builds a caching decorator around inner.
func NewFileCachingPlanner(inner Planner, routeFile string) *FileCachingPlanner {
	return &FileCachingPlanner{Inner: inner, RouteFile: routeFile}
}

func (p *FileCachingPlanner) cachePath() string {
	if p.RouteFile == "" {
		return ""
	}
	return p.RouteFile + ".calc"
}

// Plan serves from the cache file when present, otherwise delegates to Inner
// and writes the result back to the cache.
func (p *FileCachingPlanner) Plan(coords []models.Location, maxRadius float64, maxPerCluster int, algorithm Algorithm) ([]models.Location, error) {
	path := p.cachePath()
	if path != "" {
		if cached, ok := p.readCache(path); ok {
			return cached, nil
		}
	}

	route, err := p.Inner.Plan(coords, maxRadius, maxPerCluster, algorithm)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if werr := p.writeCache(path, route); werr != nil {
			return nil, fmt.Errorf("planner: caching route: %w", werr)
		}
	}
	return route, nil
}

func (p *FileCachingPlanner) readCache(path string) ([]models.Location, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var route []models.Location
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, false
	}
	return route, true
}

func (p *FileCachingPlanner) writeCache(path string, route []models.Location) error {
	data, err := json.MarshalIndent(route, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// InvalidateCache removes the cache file, matching deleteOldRoute semantics.
func (p *FileCachingPlanner) InvalidateCache() error {
	path := p.cachePath()
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
