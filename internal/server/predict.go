package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"priceflow/features"
	"priceflow/logger"
	"priceflow/model"
	"priceflow/models"
	"priceflow/train"
)

// handlePredictPrice serves POST /predict/price. The boosted regressor
// is preferred when its artifact exists; otherwise the linear baseline.
func (s *Server) handlePredictPrice(c *gin.Context) {
	payload, ok := s.bindListing(c)
	if !ok {
		return
	}

	X, ok := s.featureMatrix(c, payload, train.RegColumnsFile)
	if !ok {
		return
	}

	var (
		artifact  string
		predictor interface{ Predict([][]float64) []float64 }
	)
	if s.store.Exists(train.RegBoostedFile) {
		gbrt := &model.GradientBoostedRegressor{}
		if !s.loadModel(c, train.RegBoostedFile, gbrt) {
			return
		}
		artifact, predictor = train.RegBoostedFile, gbrt
	} else {
		linear := &model.LinearRegression{}
		if !s.loadModel(c, train.RegLinearFile, linear) {
			return
		}
		artifact, predictor = train.RegLinearFile, linear
	}

	yhat := predictor.Predict(X)
	c.JSON(http.StatusOK, gin.H{
		"model":      artifact,
		"prediction": yhat[0],
	})
}

// handlePredictSold serves POST /predict/sold with a probability and a
// thresholded label.
func (s *Server) handlePredictSold(c *gin.Context) {
	payload, ok := s.bindListing(c)
	if !ok {
		return
	}

	X, ok := s.featureMatrix(c, payload, train.ClfColumnsFile)
	if !ok {
		return
	}

	var (
		artifact   string
		classifier interface{ PredictProba([][]float64) []float64 }
	)
	if s.store.Exists(train.ClfBoostedFile) {
		gbc := &model.GradientBoostedClassifier{}
		if !s.loadModel(c, train.ClfBoostedFile, gbc) {
			return
		}
		artifact, classifier = train.ClfBoostedFile, gbc
	} else {
		logit := &model.LogisticRegression{}
		if !s.loadModel(c, train.ClfLogitFile, logit) {
			return
		}
		artifact, classifier = train.ClfLogitFile, logit
	}

	proba := classifier.PredictProba(X)[0]
	label := 0
	if proba >= s.cfg.Training.Threshold {
		label = 1
	}
	c.JSON(http.StatusOK, gin.H{
		"model":       artifact,
		"probability": proba,
		"label":       label,
	})
}

func (s *Server) bindListing(c *gin.Context) (models.Listing, bool) {
	var payload models.Listing
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return payload, false
	}
	if payload.ItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return payload, false
	}
	// Target fields never enter the inference path, whatever the client
	// sends.
	payload.FinalPrice = models.FlexFloat{}
	payload.Sold = nil
	return payload, true
}

// featureMatrix runs the inference feature build and aligns it against
// the persisted training column manifest.
func (s *Server) featureMatrix(c *gin.Context, payload models.Listing, manifestFile string) ([][]float64, bool) {
	var manifest []string
	if err := s.store.LoadJSON(manifestFile, &manifest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no trained model available: " + manifestFile})
		return nil, false
	}

	feats := features.BuildInference(s.cfg, models.ListingFrame([]models.Listing{payload}), s.now())
	if feats.Rows() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no features produced from payload"})
		return nil, false
	}

	aligned := features.Align(feats, manifest)
	X, err := aligned.Matrix(manifest)
	if err != nil {
		s.log.WithComponent("api").WithError(err).Error("feature alignment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feature alignment failed"})
		return nil, false
	}
	return X, true
}

func (s *Server) loadModel(c *gin.Context, name string, v interface{}) bool {
	if err := s.store.LoadJSON(name, v); err != nil {
		s.log.WithComponent("api").WithError(err).WithFields(logger.Fields{
			"artifact": name,
		}).Warn("model artifact missing")
		c.JSON(http.StatusBadRequest, gin.H{"error": "model not found: " + name})
		return false
	}
	return true
}
