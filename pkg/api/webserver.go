package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"

	"github.com/chenBenjamin97/hoopevents/pkg/config"
	"github.com/chenBenjamin97/hoopevents/pkg/events"
	"github.com/chenBenjamin97/hoopevents/pkg/pipeline"
	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
	"github.com/chenBenjamin97/hoopevents/pkg/utils"
	"github.com/cyclopcam/logs"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

func SetRouter(log logs.Log) *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	apiRoutes.POST("/Analyze", analyze(log))

	apiRoutes.GET("/Sessions", func(ctx *gin.Context) {
		if names, err := listSessions(viper.GetString("directory.sessions")); err != nil {
			log.Errorf("api/Sessions: Could not list sessions, got '%v'", err)
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, gin.H{"sessions": names})
		}
	})

	apiRoutes.GET("/Events/:session", func(ctx *gin.Context) {
		dir, ok := sessionDir(ctx)
		if !ok {
			return
		}

		eventsPath := path.Join(dir, utils.EventsFileName)
		if _, err := os.Stat(eventsPath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound) //session was never completed
			} else {
				ctx.Status(http.StatusInternalServerError)
			}
			return
		}

		eventType := ctx.Query("type")
		if eventType != "" && !utils.InSlice(eventType, events.TypeNames()) {
			ctx.Status(http.StatusNotAcceptable) //unknown event type
			return
		}

		f, err := os.Open(eventsPath)
		if err != nil {
			log.Errorf("api/Events: Could not open '%s', got '%v'", eventsPath, err)
			ctx.Status(http.StatusInternalServerError)
			return
		}
		defer f.Close()

		aggregate, err := events.ReadAggregate(f)
		if err != nil {
			log.Errorf("api/Events: %v", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		if eventType != "" {
			ctx.JSON(http.StatusOK, aggregate.Filter(events.Type(eventType)))
			return
		}

		ctx.JSON(http.StatusOK, aggregate)
	})

	apiRoutes.DELETE("/Sessions/:session", func(ctx *gin.Context) {
		dir, ok := sessionDir(ctx)
		if !ok {
			return
		}

		if err := os.RemoveAll(dir); err != nil {
			log.Errorf("api/Sessions: Could not delete session '%s', got '%v'", ctx.Param("session"), err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		log.Infof("api/Sessions: Deleted session '%s'", ctx.Param("session"))
		ctx.Status(http.StatusOK)
	})

	return r
}

//listSessions returns the sessions under dir that hold an events file, incomplete ones are left out
func listSessions(dir string) ([]string, error) {
	names, err := utils.ListDir(dir)
	if err != nil {
		return nil, err
	}

	sessions := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := os.Stat(path.Join(dir, name, utils.EventsFileName)); err == nil {
			sessions = append(sessions, name)
		}
	}

	return sessions, nil
}

//sessionDir resolves the directory of the session named in the url. It writes the error status itself and returns false
//when the session id is invalid or the session does not exist
func sessionDir(ctx *gin.Context) (string, bool) {
	id, err := uuid.Parse(ctx.Param("session"))
	if err != nil {
		ctx.Status(http.StatusNotAcceptable) //not a session id
		return "", false
	}

	dir := path.Join(viper.GetString("directory.sessions"), id.String())
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if err == nil || os.IsNotExist(err) {
			ctx.Status(http.StatusNotFound)
		} else {
			ctx.Status(http.StatusInternalServerError)
		}
		return "", false
	}

	return dir, true
}

//saveSession writes the aggregate events record of a run under sessionsDir/id. A session that could not be
//fully written is removed
func saveSession(sessionsDir, id string, collector *events.Collector) (err error) {
	dir := path.Join(sessionsDir, id)
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			os.RemoveAll(dir)
		}
	}()

	eventsPath := path.Join(dir, utils.EventsFileName)
	f, err := os.Create(eventsPath)
	if err != nil {
		return fmt.Errorf("saveSession: Could not create '%s', got '%w'", eventsPath, err)
	}

	if err := collector.ExportJSON(f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("saveSession: Could not write '%s', got '%w'", eventsPath, err)
	}

	return nil
}

//analyze runs the event detection pipeline over the tracking data in the request body, saves the
//aggregate under a new session and answers with the frontend export
func analyze(log logs.Log) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cfg := config.Detection()

		if maxFrames := ctx.Query("max_frames"); maxFrames != "" {
			n, err := strconv.Atoi(maxFrames)
			if err != nil || n < 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "max_frames must be a non negative integer"})
				return
			}
			cfg.MaxFrames = n
		}

		in, err := tracking.ReadInput(ctx.Request.Body)
		if err != nil {
			log.Warnf("api/Analyze: %v", err)
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := pipeline.NewRun(log, cfg, nil).Analyze(in)
		if err != nil {
			log.Warnf("api/Analyze: Analysis failed, got '%v'", err)
			if errors.Is(err, tracking.ErrLengthMismatch) || errors.Is(err, tracking.ErrInvalidFPS) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		sessionID := uuid.New().String()
		if err := saveSession(viper.GetString("directory.sessions"), sessionID, res.Events); err != nil {
			log.Errorf("api/Analyze: %v", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		log.Infof("api/Analyze: Session '%s' saved with %d events", sessionID, res.Events.Len())

		ctx.JSON(http.StatusOK, gin.H{
			"success":    true,
			"session_id": sessionID,
			"events":     res.Events.ExportForFrontend(),
		})
	}
}
